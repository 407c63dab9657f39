package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"busline/internal/backend"
	"busline/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	return NewService(NewRepository(client), time.UTC)
}

func TestService_Snapshot(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/vehicle/bus-7", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("date"))
		w.Write([]byte(`{"success":true,"data":[{"bookingDate":"2024-06-01T00:00:00Z","seatNumbers":[{"key":"lower-0-0","number":"L01"}]}]}`))
	})

	snapshot, err := svc.Snapshot(context.Background(), "bus-7", time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "L01", snapshot[0].SeatNumbers[0].Number)
}

func TestService_History(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":{"items":[{"id":"b1","status":"CONFIRMED"}],"pagination":{"total":21}}}`))
	})

	history, err := svc.History(context.Background(), HistoryQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 21, history.Total)
	assert.Equal(t, 3, history.TotalPages)
	require.Len(t, history.Items, 1)
	assert.Equal(t, StatusConfirmed, history.Items[0].Status)
}

func TestService_HistoryRejectsUnknownEnvelope(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"bookings":[]}}`))
	})

	_, err := svc.History(context.Background(), HistoryQuery{})
	var decErr *backend.DecodeError
	assert.True(t, errors.As(err, &decErr))
}

func TestService_UpdateStatus(t *testing.T) {
	patched := make(chan map[string]interface{}, 1)
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"data":{"id":"b1","status":"CONFIRMED"}}`))
		case http.MethodPatch:
			raw, _ := io.ReadAll(r.Body)
			var body map[string]interface{}
			assert.NoError(t, json.Unmarshal(raw, &body))
			patched <- body
			w.Write([]byte(`{"data":{"id":"b1","status":"COMPLETED"}}`))
		}
	})

	booking, err := svc.UpdateStatus(context.Background(), "b1", UpdateStatusRequest{
		Status:             StatusCompleted,
		CancellationReason: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, booking.Status)
	assert.Equal(t, map[string]interface{}{"status": "COMPLETED"}, <-patched)
}

func TestService_UpdateStatusRejectsInvalidTransition(t *testing.T) {
	var patchCalled atomic.Bool
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			patchCalled.Store(true)
		}
		w.Write([]byte(`{"data":{"id":"b1","status":"COMPLETED"}}`))
	})

	_, err := svc.UpdateStatus(context.Background(), "b1", UpdateStatusRequest{Status: StatusCancelled})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, patchCalled.Load())

	_, err = svc.UpdateStatus(context.Background(), "b1", UpdateStatusRequest{Status: "ARCHIVED"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestController_UpdateStatusSurfacesBackendMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Booking not found"}`))
	})

	router := gin.New()
	router.PATCH("/admin/bookings/:id", NewController(svc).UpdateStatus)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/admin/bookings/missing", strings.NewReader(`{"status":"CANCELLED"}`))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Booking not found", body["message"])
}

func TestController_UpdateStatusRequiresStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PATCH("/admin/bookings/:id", NewController(NewService(nil, nil)).UpdateStatus)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/admin/bookings/b1", strings.NewReader(`{}`))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestController_UpdateStatusValidatesStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	router := gin.New()
	router.PATCH("/admin/bookings/:id", NewController(svc).UpdateStatus)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/admin/bookings/b1", strings.NewReader(`{"status":"ARCHIVED"}`))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Validation failed")
	assert.Zero(t, atomic.LoadInt32(&calls))
}
