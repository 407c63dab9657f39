package checkout

import (
	"context"
	"fmt"

	"busline/internal/backend"
	"busline/internal/bookings"
)

// IntentRequest is the body of POST /payments/create-intent
type IntentRequest struct {
	VehicleID       string               `json:"vehicleId"`
	VendorID        string               `json:"vendorId"`
	RouteID         string               `json:"routeId"`
	BoardingPointID string               `json:"boardingPointId"`
	DroppingPointID string               `json:"droppingPointId,omitempty"`
	BookingDate     bookings.BookingDate `json:"bookingDate"`
	SeatNumbers     []bookings.SeatRef   `json:"seatNumbers"`
	TotalAmount     float64              `json:"totalAmount"`
	DiscountAmount  float64              `json:"discountAmount"`
	FinalAmount     float64              `json:"finalAmount"`
	Currency        string               `json:"currency"`
}

type Intent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentSettings is the public part of the backend's payment settings
type PaymentSettings struct {
	PublishableKey string `json:"publishableKey"`
	Currency       string `json:"currency,omitempty"`
}

// PaymentGateway reaches the payment endpoints of the backend
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetSettings(ctx context.Context) (*PaymentSettings, error)
}

type paymentGateway struct {
	client *backend.Client
}

func NewPaymentGateway(client *backend.Client) PaymentGateway {
	return &paymentGateway{client: client}
}

func (g *paymentGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	body, err := g.client.Post(ctx, "/payments/create-intent", req)
	if err != nil {
		return nil, err
	}

	intent, err := backend.DecodeData[Intent](body)
	if err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	if intent.ClientSecret == "" || intent.PaymentIntentID == "" {
		return nil, &backend.DecodeError{Reason: "payment intent without client secret or id"}
	}
	return &intent, nil
}

func (g *paymentGateway) GetSettings(ctx context.Context) (*PaymentSettings, error) {
	body, err := g.client.Get(ctx, "/settings/payment", nil)
	if err != nil {
		return nil, err
	}

	raw, err := backend.DecodeData[struct {
		PublishableKey       string `json:"publishableKey"`
		StripePublishableKey string `json:"stripePublishableKey"`
		Currency             string `json:"currency"`
	}](body)
	if err != nil {
		return nil, fmt.Errorf("decode payment settings: %w", err)
	}

	settings := &PaymentSettings{PublishableKey: raw.PublishableKey, Currency: raw.Currency}
	if settings.PublishableKey == "" {
		settings.PublishableKey = raw.StripePublishableKey
	}
	if settings.PublishableKey == "" {
		return nil, &backend.DecodeError{Reason: "payment settings without publishable key"}
	}
	return settings, nil
}
