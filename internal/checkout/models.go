package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"busline/internal/selection"
)

// Method is the payment method picked at checkout. The zero value means
// none has been chosen yet.
type Method string

const (
	MethodNone Method = ""
	MethodCash Method = "CASH"
	MethodCard Method = "CARD"
)

func (m Method) IsValid() bool {
	return m == MethodCash || m == MethodCard
}

var (
	ErrPreconditionFailed = errors.New("checkout needs a vehicle, a boarding point and at least one seat")
	ErrInvalidMethod      = errors.New("payment method must be CASH or CARD")
	ErrWrongMethod        = errors.New("checkout is not using this payment method")
	ErrIntentMismatch     = errors.New("payment intent does not belong to this checkout")
	ErrSubmissionInFlight = errors.New("a booking submission is already in progress")
	ErrStaleIntent        = errors.New("the selection changed after the card payment was started, choose a payment method again")
)

// State is the per-owner checkout state kept in Redis
type State struct {
	Method          Method `json:"method"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	AttemptID       string `json:"attemptId,omitempty"`
	// IntentSelection is the fingerprint of the selection the open intent
	// was created for
	IntentSelection string `json:"intentSelection,omitempty"`
}

func (s *State) hasIntent() bool {
	return s.PaymentIntentID != ""
}

func (s *State) clearIntent() {
	s.ClientSecret = ""
	s.PaymentIntentID = ""
	s.AttemptID = ""
	s.IntentSelection = ""
}

// covers reports whether the open intent was created for sel as it is now
func (s *State) covers(sel *selection.State) bool {
	return s.hasIntent() && s.IntentSelection == selectionFingerprint(sel)
}

// selectionFingerprint identifies what a payment is for: vehicle, day,
// seats and amount. Seat order does not matter.
func selectionFingerprint(sel *selection.State) string {
	keys := make([]string, 0, len(sel.SelectedSeats))
	for _, key := range sel.KeyList() {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	vehicleID := ""
	if sel.SelectedVehicle != nil {
		vehicleID = sel.SelectedVehicle.ID
	}
	return fmt.Sprintf("%s|%s|%s|%.2f", vehicleID, sel.BookingDate, strings.Join(keys, ","), sel.TotalAmount())
}

// View is what the checkout endpoints answer with
type View struct {
	State
	Selection *selection.State `json:"selection"`
	Notice    string           `json:"-"`
}

// Result of a finished checkout
type Result struct {
	BookingID string `json:"bookingId,omitempty"`
	Redirect  string `json:"redirect"`
}

type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "PENDING"
	AttemptStatusSucceeded AttemptStatus = "SUCCEEDED"
	AttemptStatusFailed    AttemptStatus = "FAILED"
	AttemptStatusAbandoned AttemptStatus = "ABANDONED"
)

// Attempt is one cash submission or card intent, kept as a local ledger
type Attempt struct {
	ID            string        `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID       string        `json:"ownerId" gorm:"not null;size:64;index"`
	VehicleID     string        `json:"vehicleId" gorm:"not null;size:64"`
	BookingDate   string        `json:"bookingDate" gorm:"not null;size:10"`
	Method        Method        `json:"method" gorm:"type:varchar(10);not null"`
	SeatCount     int           `json:"seatCount" gorm:"not null;check:seat_count > 0"`
	Amount        float64       `json:"amount" gorm:"not null;check:amount >= 0"`
	Currency      string        `json:"currency" gorm:"size:8"`
	ExternalRef   string        `json:"externalRef" gorm:"size:128;index"`
	Status        AttemptStatus `json:"status" gorm:"type:varchar(20);not null"`
	FailureReason string        `json:"failureReason,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Attempt) TableName() string {
	return "checkout_attempts"
}
