package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"busline/internal/backend"
	"busline/internal/bookings"
	"busline/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) PaymentGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPaymentGateway(backend.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil))
}

func TestPaymentGateway_CreateIntent(t *testing.T) {
	received := make(chan IntentRequest, 1)
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments/create-intent", r.URL.Path)
		var req IntentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			received <- req
		}
		w.Write([]byte(`{"data":{"clientSecret":"pi_9_secret_x","paymentIntentId":"pi_9"}}`))
	})

	intent, err := gateway.CreateIntent(context.Background(), IntentRequest{
		VehicleID:   "bus-1",
		BookingDate: bookings.NewDay(2024, 6, 1),
		TotalAmount: 500,
		FinalAmount: 500,
		Currency:    "usd",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_9", intent.PaymentIntentID)
	assert.Equal(t, "pi_9_secret_x", intent.ClientSecret)

	req := <-received
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, "2024-06-01", req.BookingDate.Time.Format("2006-01-02"))
}

func TestPaymentGateway_CreateIntent_MissingSecret(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"paymentIntentId":"pi_9"}}`))
	})

	_, err := gateway.CreateIntent(context.Background(), IntentRequest{})
	var decErr *backend.DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestPaymentGateway_GetSettings(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/settings/payment", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"stripePublishableKey":"pk_live_abc"}}`))
	})

	settings, err := gateway.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pk_live_abc", settings.PublishableKey)
}
