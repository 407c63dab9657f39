package bookings

import (
	"bytes"
	"encoding/json"
	"time"

	"busline/internal/seatmap"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Booking is owned by the backend; the gateway only creates bookings and
// forwards status changes.
type Booking struct {
	ID                 string        `json:"id"`
	VehicleID          string        `json:"vehicleId"`
	VendorID           string        `json:"vendorId"`
	RouteID            string        `json:"routeId"`
	BoardingPointID    string        `json:"boardingPointId"`
	DroppingPointID    string        `json:"droppingPointId,omitempty"`
	BookingDate        BookingDate   `json:"bookingDate"`
	SeatNumbers        []SeatRef     `json:"seatNumbers"`
	TotalAmount        float64       `json:"totalAmount"`
	DiscountAmount     float64       `json:"discountAmount"`
	FinalAmount        float64       `json:"finalAmount"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	PaymentStatus      PaymentStatus `json:"paymentStatus,omitempty"`
	Status             Status        `json:"status"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	CreatedAt          *time.Time    `json:"createdAt,omitempty"`
}

// SeatRef names a booked seat. Older backend payloads list bare keys.
type SeatRef struct {
	Key    seatmap.SeatKey  `json:"key"`
	Number string           `json:"number,omitempty"`
	Type   seatmap.SeatType `json:"type,omitempty"`
	Price  float64          `json:"price,omitempty"`
}

func (r *SeatRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var key string
		if err := json.Unmarshal(data, &key); err != nil {
			return err
		}
		*r = SeatRef{Key: seatmap.SeatKey(key)}
		return nil
	}

	type plain SeatRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = SeatRef(p)
	return nil
}

const dateLayout = "2006-01-02"

// BookingDate decodes whatever the backend sends for a booking date.
// RFC 3339 instants and plain YYYY-MM-DD days are understood; anything
// else (null, missing, garbage) leaves the zero value, which never
// matches a day.
type BookingDate struct {
	Time time.Time
	// DateOnly marks a plain calendar day with no instant or zone
	DateOnly bool
}

// NewDay returns a date-only BookingDate
func NewDay(year int, month time.Month, day int) BookingDate {
	return BookingDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

func (d BookingDate) IsZero() bool {
	return d.Time.IsZero()
}

// Day returns the calendar day the date falls on in loc. Date-only values
// are the same day everywhere.
func (d BookingDate) Day(loc *time.Location) (int, time.Month, int) {
	if d.DateOnly || loc == nil {
		return d.Time.Date()
	}
	return d.Time.In(loc).Date()
}

// String formats the day as YYYY-MM-DD in UTC for date-only values and
// in the value's own zone otherwise.
func (d BookingDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(dateLayout)
}

func (d *BookingDate) UnmarshalJSON(data []byte) error {
	*d = BookingDate{}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d.Time = t
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		d.DateOnly = true
	}
	return nil
}

func (d BookingDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}
