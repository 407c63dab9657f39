package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/internal/bookings"
	"busline/internal/seatmap"
	"busline/internal/seats"
	"busline/internal/vehicles"
	"busline/pkg/logger"
)

// DateLayout is the wire format of a booking day
const DateLayout = "2006-01-02"

var (
	ErrNoVehicle   = errors.New("no vehicle selected")
	ErrNoDate      = errors.New("no booking date selected")
	ErrInvalidDate = errors.New("booking date must be a YYYY-MM-DD day that is not in the past")
	ErrUnknownStop = errors.New("stop is not on this vehicle's route")
)

type VehicleSource interface {
	GetVehicle(ctx context.Context, id string) (*vehicles.Vehicle, error)
}

type SnapshotSource interface {
	Snapshot(ctx context.Context, vehicleID string, date time.Time) (bookings.Snapshot, error)
}

type HoldReader interface {
	HeldByOthers(ctx context.Context, ownerID, vehicleID, day string, keys []seatmap.SeatKey) (map[seatmap.SeatKey]bool, error)
}

// ResetHook runs after an owner's selection is cleared
type ResetHook func(ctx context.Context, ownerID string) error

// ToggleResult carries the state after a click. Warning is set when the
// click was refused for a reason the user should see.
type ToggleResult struct {
	State    *State `json:"state"`
	Selected bool   `json:"selected"`
	Warning  string `json:"-"`
}

type Service interface {
	Get(ctx context.Context, ownerID string) (*State, error)
	Open(ctx context.Context, ownerID, vehicleID, date string) (*State, error)
	SetDate(ctx context.Context, ownerID, date string) (*State, error)
	ToggleSeat(ctx context.Context, ownerID string, key seatmap.SeatKey) (*ToggleResult, error)
	SetBoardingPoint(ctx context.Context, ownerID, stopID string) (*State, error)
	SetDroppingPoint(ctx context.Context, ownerID, stopID string) (*State, error)
	Reset(ctx context.Context, ownerID string) error
	Grid(ctx context.Context, ownerID string) (*seats.Grid, error)

	// Vehicle returns the vehicle of the current selection
	Vehicle(ctx context.Context, state *State) (*vehicles.Vehicle, error)
	OnReset(hook ResetHook)
}

type service struct {
	store     *Store
	vehicles  VehicleSource
	snapshots SnapshotSource
	holds     HoldReader
	location  *time.Location
	now       func() time.Time
	hooks     []ResetHook
}

func NewService(store *Store, vehicleSource VehicleSource, snapshots SnapshotSource, holds HoldReader, location *time.Location) Service {
	if location == nil {
		location = time.UTC
	}
	return &service{
		store:     store,
		vehicles:  vehicleSource,
		snapshots: snapshots,
		holds:     holds,
		location:  location,
		now:       time.Now,
	}
}

func (s *service) OnReset(hook ResetHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *service) Get(ctx context.Context, ownerID string) (*State, error) {
	return s.store.Load(ctx, ownerID)
}

// Open starts a fresh selection on a vehicle. Anything left from an earlier
// session is reset first, hooks included.
func (s *service) Open(ctx context.Context, ownerID, vehicleID, date string) (*State, error) {
	vehicle, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	if err := s.Reset(ctx, ownerID); err != nil {
		return nil, err
	}

	state := NewState()
	state.SetVehicle(&VehicleRef{
		ID:       vehicle.ID,
		VendorID: vehicle.VendorID,
		RouteID:  vehicle.RouteID,
		Name:     vehicle.Name,
	})
	state.SetBookingDate(day)

	if err := s.store.Save(ctx, ownerID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetDate moves the selection to another day. Seats chosen for the old
// day are dropped because their availability no longer applies.
func (s *service) SetDate(ctx context.Context, ownerID, date string) (*State, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	state, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if state.BookingDate != day {
		state.ClearSeats()
	}
	state.SetBookingDate(day)

	if err := s.store.Save(ctx, ownerID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *service) ToggleSeat(ctx context.Context, ownerID string, key seatmap.SeatKey) (*ToggleResult, error) {
	state, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.Vehicle(ctx, state)
	if err != nil {
		return nil, err
	}

	status := seats.StatusSelected
	if !state.IsSelected(key) {
		in, err := s.input(ctx, ownerID, state, vehicle)
		if err != nil {
			return nil, err
		}
		status = seats.Resolve(key, in)
	}

	info, _ := vehicle.SeatMap.Lookup(key)
	selected, err := state.SelectSeat(key, status, info, vehicle.PriceFor(info.Type))
	switch {
	case errors.Is(err, ErrNoSeat):
		return &ToggleResult{State: state}, nil
	case errors.Is(err, ErrSelectionLimit), errors.Is(err, ErrSeatBooked):
		return &ToggleResult{State: state, Warning: err.Error()}, nil
	case err != nil:
		return nil, err
	}

	if err := s.store.Save(ctx, ownerID, state); err != nil {
		return nil, err
	}
	logger.GetDefault().LogSeatToggled(ctx, ownerID, string(key), selected, state.TotalAmount())

	return &ToggleResult{State: state, Selected: selected}, nil
}

func (s *service) SetBoardingPoint(ctx context.Context, ownerID, stopID string) (*State, error) {
	return s.setStop(ctx, ownerID, func(v *vehicles.Vehicle, st *State) bool {
		stop, ok := v.BoardingPoint(stopID)
		if ok {
			st.SetBoardingPoint(&stop)
		}
		return ok
	})
}

func (s *service) SetDroppingPoint(ctx context.Context, ownerID, stopID string) (*State, error) {
	return s.setStop(ctx, ownerID, func(v *vehicles.Vehicle, st *State) bool {
		stop, ok := v.DroppingPoint(stopID)
		if ok {
			st.SetDroppingPoint(&stop)
		}
		return ok
	})
}

func (s *service) setStop(ctx context.Context, ownerID string, apply func(*vehicles.Vehicle, *State) bool) (*State, error) {
	state, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.Vehicle(ctx, state)
	if err != nil {
		return nil, err
	}
	if !apply(vehicle, state) {
		return nil, ErrUnknownStop
	}
	if err := s.store.Save(ctx, ownerID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset clears the selection and then runs every hook. Hook failures are
// logged and do not fail the reset.
func (s *service) Reset(ctx context.Context, ownerID string) error {
	if err := s.store.Delete(ctx, ownerID); err != nil {
		return err
	}
	for _, hook := range s.hooks {
		if err := hook(ctx, ownerID); err != nil {
			logger.GetDefault().WithOwner(ownerID).WithError(err).ErrorContext(ctx, "Selection reset hook failed")
		}
	}
	return nil
}

func (s *service) Grid(ctx context.Context, ownerID string) (*seats.Grid, error) {
	state, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.Vehicle(ctx, state)
	if err != nil {
		return nil, err
	}
	in, err := s.input(ctx, ownerID, state, vehicle)
	if err != nil {
		return nil, err
	}
	grid := seats.ResolveGrid(in)
	return &grid, nil
}

func (s *service) Vehicle(ctx context.Context, state *State) (*vehicles.Vehicle, error) {
	if state.SelectedVehicle == nil {
		return nil, ErrNoVehicle
	}
	return s.vehicles.GetVehicle(ctx, state.SelectedVehicle.ID)
}

func (s *service) input(ctx context.Context, ownerID string, state *State, vehicle *vehicles.Vehicle) (seats.Input, error) {
	date, ok := state.Date(s.location)
	if !ok {
		return seats.Input{}, ErrNoDate
	}

	snapshot, err := s.snapshots.Snapshot(ctx, vehicle.ID, date)
	if err != nil {
		return seats.Input{}, fmt.Errorf("failed to load bookings: %w", err)
	}

	held, err := s.holds.HeldByOthers(ctx, ownerID, vehicle.ID, state.BookingDate, vehicle.SeatMap.Keys())
	if err != nil {
		return seats.Input{}, fmt.Errorf("failed to load seat holds: %w", err)
	}

	return seats.Input{
		Map:          &vehicle.SeatMap,
		Snapshot:     snapshot,
		Date:         date,
		Location:     s.location,
		Selected:     state.SelectedKeys(),
		HeldByOthers: held,
		Pricing:      vehicle.Pricing,
	}, nil
}

// parseDay accepts a YYYY-MM-DD day that is today or later in the booking
// location
func (s *service) parseDay(date string) (string, error) {
	day, err := time.ParseInLocation(DateLayout, date, s.location)
	if err != nil {
		return "", ErrInvalidDate
	}
	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	if day.Before(today) {
		return "", ErrInvalidDate
	}
	return day.Format(DateLayout), nil
}
