package selection

import (
	"encoding/json"
	"errors"
	"time"

	"busline/internal/seatmap"
	"busline/internal/seats"
	"busline/internal/vehicles"
)

// MaxSeats is the most seats one booking may hold
const MaxSeats = 4

var (
	ErrSelectionLimit = errors.New("you can select a maximum 4 seats per booking")
	ErrSeatBooked     = errors.New("this seat is already booked")
	ErrNoSeat         = errors.New("no seat at this position")
)

type VehicleRef struct {
	ID       string `json:"id"`
	VendorID string `json:"vendorId"`
	RouteID  string `json:"routeId"`
	Name     string `json:"name"`
}

type SelectedSeat struct {
	Key    seatmap.SeatKey  `json:"key"`
	Type   seatmap.SeatType `json:"type"`
	Price  float64          `json:"price"`
	Number string           `json:"number,omitempty"`
}

// State is one user's booking session. The total is always the sum of
// the selected seats' prices and cannot be set.
type State struct {
	SelectedVehicle       *VehicleRef    `json:"selectedVehicle"`
	SelectedSeats         []SelectedSeat `json:"selectedSeats"`
	SelectedBoardingPoint *vehicles.Stop `json:"selectedBoardingPoint"`
	SelectedDroppingPoint *vehicles.Stop `json:"selectedDroppingPoint"`
	BookingDate           string         `json:"bookingDate"`

	totalAmount float64
}

func NewState() *State {
	return &State{SelectedSeats: []SelectedSeat{}}
}

func (s *State) TotalAmount() float64 {
	return s.totalAmount
}

func (s *State) recompute() {
	total := 0.0
	for _, seat := range s.SelectedSeats {
		total += seat.Price
	}
	s.totalAmount = total
}

func (s *State) indexOf(key seatmap.SeatKey) int {
	for i, seat := range s.SelectedSeats {
		if seat.Key == key {
			return i
		}
	}
	return -1
}

func (s *State) IsSelected(key seatmap.SeatKey) bool {
	return s.indexOf(key) >= 0
}

// SelectedKeys returns the selection as a set
func (s *State) SelectedKeys() map[seatmap.SeatKey]bool {
	keys := make(map[seatmap.SeatKey]bool, len(s.SelectedSeats))
	for _, seat := range s.SelectedSeats {
		keys[seat.Key] = true
	}
	return keys
}

func (s *State) KeyList() []seatmap.SeatKey {
	keys := make([]seatmap.SeatKey, len(s.SelectedSeats))
	for i, seat := range s.SelectedSeats {
		keys[i] = seat.Key
	}
	return keys
}

// SelectSeat toggles key. Removing is always allowed. Adding fails, with
// the state untouched, for an empty position, a booked seat, or a full
// selection. It reports whether the seat is selected afterwards.
func (s *State) SelectSeat(key seatmap.SeatKey, status seats.Status, info seatmap.SeatInfo, price float64) (bool, error) {
	if idx := s.indexOf(key); idx >= 0 {
		s.SelectedSeats = append(s.SelectedSeats[:idx:idx], s.SelectedSeats[idx+1:]...)
		s.recompute()
		return false, nil
	}

	switch status {
	case seats.StatusEmpty:
		return false, ErrNoSeat
	case seats.StatusBooked:
		return false, ErrSeatBooked
	}

	if len(s.SelectedSeats) >= MaxSeats {
		return false, ErrSelectionLimit
	}

	s.SelectedSeats = append(s.SelectedSeats, SelectedSeat{
		Key:    key,
		Type:   info.Type,
		Price:  price,
		Number: info.Number,
	})
	s.recompute()
	return true, nil
}

// ClearSeats empties the selection and keeps everything else
func (s *State) ClearSeats() {
	s.SelectedSeats = []SelectedSeat{}
	s.recompute()
}

func (s *State) SetVehicle(v *VehicleRef) {
	s.SelectedVehicle = v
}

func (s *State) SetBoardingPoint(p *vehicles.Stop) {
	s.SelectedBoardingPoint = p
}

func (s *State) SetDroppingPoint(p *vehicles.Stop) {
	s.SelectedDroppingPoint = p
}

func (s *State) SetBookingDate(day string) {
	s.BookingDate = day
}

// Reset returns the state to its initial empty shape
func (s *State) Reset() {
	*s = *NewState()
}

// Date parses BookingDate as a day starting at midnight in loc
func (s *State) Date(loc *time.Location) (time.Time, bool) {
	if s.BookingDate == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s.BookingDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type stateJSON struct {
	SelectedVehicle       *VehicleRef    `json:"selectedVehicle"`
	SelectedSeats         []SelectedSeat `json:"selectedSeats"`
	SelectedBoardingPoint *vehicles.Stop `json:"selectedBoardingPoint"`
	SelectedDroppingPoint *vehicles.Stop `json:"selectedDroppingPoint"`
	BookingDate           string         `json:"bookingDate"`
	TotalAmount           float64        `json:"totalAmount"`
}

func (s *State) MarshalJSON() ([]byte, error) {
	seatsOut := s.SelectedSeats
	if seatsOut == nil {
		seatsOut = []SelectedSeat{}
	}
	return json.Marshal(stateJSON{
		SelectedVehicle:       s.SelectedVehicle,
		SelectedSeats:         seatsOut,
		SelectedBoardingPoint: s.SelectedBoardingPoint,
		SelectedDroppingPoint: s.SelectedDroppingPoint,
		BookingDate:           s.BookingDate,
		TotalAmount:           s.totalAmount,
	})
}

// UnmarshalJSON ignores any stored total and derives it again
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = State{
		SelectedVehicle:       raw.SelectedVehicle,
		SelectedSeats:         raw.SelectedSeats,
		SelectedBoardingPoint: raw.SelectedBoardingPoint,
		SelectedDroppingPoint: raw.SelectedDroppingPoint,
		BookingDate:           raw.BookingDate,
	}
	if s.SelectedSeats == nil {
		s.SelectedSeats = []SelectedSeat{}
	}
	s.recompute()
	return nil
}
