package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/internal/backend"
	"busline/internal/bookings"
	"busline/internal/notifications"
	"busline/internal/seatmap"
	"busline/internal/seats"
	"busline/internal/selection"
	"busline/internal/shared/constants"
	"busline/pkg/cache"
	"busline/pkg/logger"

	"github.com/google/uuid"
)

const (
	RedirectHome         = "/"
	RedirectBookings     = "/bookings"
	RedirectConfirmation = "/bookings/confirmation"
)

type Selections interface {
	Get(ctx context.Context, ownerID string) (*selection.State, error)
	Reset(ctx context.Context, ownerID string) error
}

type BookingCreator interface {
	CreateBooking(ctx context.Context, req bookings.CreateBookingRequest) (*bookings.Booking, error)
}

type SeatHolds interface {
	Acquire(ctx context.Context, ownerID, vehicleID, day string, keys []seatmap.SeatKey, ttl time.Duration) error
}

type Options struct {
	Currency string
	HoldTTL  time.Duration
}

type Service interface {
	// Enter checks the selection is complete and holds its seats
	Enter(ctx context.Context, ownerID string) (*View, error)
	ChooseMethod(ctx context.Context, ownerID string, method Method) (*View, error)
	SubmitCash(ctx context.Context, ownerID string) (*Result, error)
	// CompleteCard is called once the hosted payment form reports success
	CompleteCard(ctx context.Context, ownerID, intentID string) (*Result, error)
	Config(ctx context.Context) (*PaymentSettings, error)
	Attempts(ctx context.Context, ownerID string, limit int) ([]Attempt, error)

	// Clear drops the owner's checkout state, abandoning any open intent
	Clear(ctx context.Context, ownerID string) error
}

type service struct {
	states     *StateStore
	ledger     Repository
	selections Selections
	bookings   BookingCreator
	payments   PaymentGateway
	holds      SeatHolds
	publisher  notifications.Publisher
	cache      cache.Service
	opts       Options
}

func NewService(
	states *StateStore,
	ledger Repository,
	selections Selections,
	bookingCreator BookingCreator,
	payments PaymentGateway,
	holds SeatHolds,
	publisher notifications.Publisher,
	cacheService cache.Service,
	opts Options,
) Service {
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	return &service{
		states:     states,
		ledger:     ledger,
		selections: selections,
		bookings:   bookingCreator,
		payments:   payments,
		holds:      holds,
		publisher:  publisher,
		cache:      cacheService,
		opts:       opts,
	}
}

// ready loads the selection and checks it can go through checkout. A
// session without a vehicle is stale and gets reset on the way out.
func (s *service) ready(ctx context.Context, ownerID string) (*selection.State, error) {
	sel, err := s.selections.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if sel.SelectedVehicle == nil {
		if err := s.selections.Reset(ctx, ownerID); err != nil {
			return nil, err
		}
		return nil, ErrPreconditionFailed
	}
	if len(sel.SelectedSeats) == 0 || sel.SelectedBoardingPoint == nil || sel.BookingDate == "" {
		return nil, ErrPreconditionFailed
	}
	return sel, nil
}

func (s *service) hold(ctx context.Context, ownerID string, sel *selection.State) error {
	err := s.holds.Acquire(ctx, ownerID, sel.SelectedVehicle.ID, sel.BookingDate, sel.KeyList(), s.opts.HoldTTL)
	var conflict *seats.HoldConflictError
	if errors.As(err, &conflict) {
		logger.GetDefault().LogHoldConflict(ctx, ownerID, sel.SelectedVehicle.ID, string(conflict.Key))
	}
	return err
}

func (s *service) Enter(ctx context.Context, ownerID string) (*View, error) {
	sel, err := s.ready(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.hold(ctx, ownerID, sel); err != nil {
		return nil, err
	}

	state, err := s.states.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	view := &View{Selection: sel}
	if state.hasIntent() && !state.covers(sel) {
		if err := s.dropStaleIntent(ctx, ownerID, state); err != nil {
			return nil, err
		}
		view.Notice = ErrStaleIntent.Error()
	}
	view.State = *state
	return view, nil
}

// dropStaleIntent abandons an intent created for an older selection and
// sends the owner back to picking a method
func (s *service) dropStaleIntent(ctx context.Context, ownerID string, state *State) error {
	s.abandon(ctx, ownerID, state)
	state.Method = MethodNone
	return s.states.Save(ctx, ownerID, state)
}

// ChooseMethod switches the payment method. Any open intent is dropped
// first, so picking CARD always asks for a fresh one. When the intent
// cannot be created the method falls back to CASH and the failure is
// returned as the view's notice.
func (s *service) ChooseMethod(ctx context.Context, ownerID string, method Method) (*View, error) {
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}
	sel, err := s.ready(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	state, err := s.states.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.abandon(ctx, ownerID, state)
	view := &View{Selection: sel}

	switch method {
	case MethodCash:
		state.Method = MethodCash
	case MethodCard:
		// the intent pays for exactly these seats, so they must be ours
		if err := s.hold(ctx, ownerID, sel); err != nil {
			return nil, err
		}
		intent, attemptID, err := s.createIntent(ctx, ownerID, sel)
		if err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "Payment intent creation failed", err, map[string]interface{}{
				"owner_id": ownerID,
			})
			state.Method = MethodCash
			view.Notice = err.Error()
			if _, message, ok := backend.StatusFor(err); ok {
				view.Notice = message
			}
			break
		}
		state.Method = MethodCard
		state.ClientSecret = intent.ClientSecret
		state.PaymentIntentID = intent.PaymentIntentID
		state.AttemptID = attemptID
		state.IntentSelection = selectionFingerprint(sel)
	}

	if err := s.states.Save(ctx, ownerID, state); err != nil {
		return nil, err
	}
	view.State = *state
	return view, nil
}

func (s *service) createIntent(ctx context.Context, ownerID string, sel *selection.State) (*Intent, string, error) {
	base, err := s.bookingRequest(sel)
	if err != nil {
		return nil, "", err
	}

	intent, err := s.payments.CreateIntent(ctx, IntentRequest{
		VehicleID:       base.VehicleID,
		VendorID:        base.VendorID,
		RouteID:         base.RouteID,
		BoardingPointID: base.BoardingPointID,
		DroppingPointID: base.DroppingPointID,
		BookingDate:     base.BookingDate,
		SeatNumbers:     base.SeatNumbers,
		TotalAmount:     base.TotalAmount,
		DiscountAmount:  base.DiscountAmount,
		FinalAmount:     base.FinalAmount,
		Currency:        s.opts.Currency,
	})
	if err != nil {
		return nil, "", err
	}
	logger.GetDefault().LogIntentCreated(ctx, ownerID, intent.PaymentIntentID, base.FinalAmount)

	attempt := s.newAttempt(ownerID, sel, MethodCard)
	attempt.ExternalRef = intent.PaymentIntentID
	s.record(ctx, attempt)

	return intent, attempt.ID, nil
}

// abandon clears an open card intent from state. The intent is left for
// the processor to expire.
func (s *service) abandon(ctx context.Context, ownerID string, state *State) {
	if !state.hasIntent() {
		return
	}
	if state.AttemptID != "" {
		s.mark(ctx, state.AttemptID, AttemptStatusAbandoned, "", "")
	}

	event := notifications.NewEvent(notifications.EventPaymentIntentAbandoned, ownerID)
	event.PaymentIntentID = state.PaymentIntentID
	s.publisher.Publish(ctx, event)

	state.clearIntent()
}

func (s *service) SubmitCash(ctx context.Context, ownerID string) (*Result, error) {
	sel, err := s.ready(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	state, err := s.states.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if state.Method != MethodCash {
		return nil, ErrWrongMethod
	}

	token, locked, err := s.states.Lock(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.states.Unlock(ctx, ownerID, token); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "Failed to release submission guard", err, map[string]interface{}{
				"owner_id": ownerID,
			})
		}
	}()

	// refresh the holds; another session may have taken a seat since Enter
	if err := s.hold(ctx, ownerID, sel); err != nil {
		return nil, err
	}

	req, err := s.bookingRequest(sel)
	if err != nil {
		return nil, err
	}
	req.PaymentMethod = bookings.PaymentMethodCash

	attempt := s.newAttempt(ownerID, sel, MethodCash)
	s.record(ctx, attempt)

	booking, err := s.bookings.CreateBooking(ctx, req)
	if err != nil {
		s.mark(ctx, attempt.ID, AttemptStatusFailed, "", err.Error())
		return nil, err
	}
	s.mark(ctx, attempt.ID, AttemptStatusSucceeded, booking.ID, "")
	logger.GetDefault().LogBookingPlaced(ctx, ownerID, booking.ID, string(MethodCash), req.FinalAmount)

	event := notifications.NewEvent(notifications.EventBookingPlaced, ownerID)
	event.BookingID = booking.ID
	event.VehicleID = req.VehicleID
	event.BookingDate = req.BookingDate.String()
	event.SeatKeys = keyStrings(sel.KeyList())
	event.PaymentMethod = string(bookings.PaymentMethodCash)
	event.Amount = req.FinalAmount
	s.publisher.Publish(ctx, event)

	if err := s.finish(ctx, ownerID); err != nil {
		return nil, err
	}
	return &Result{BookingID: booking.ID, Redirect: RedirectBookings}, nil
}

// CompleteCard accepts the hosted form's success only for the selection
// the intent was created for. Seats changed since then abandon the intent.
func (s *service) CompleteCard(ctx context.Context, ownerID, intentID string) (*Result, error) {
	state, err := s.states.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if state.Method != MethodCard || !state.hasIntent() {
		return nil, ErrWrongMethod
	}
	if intentID != state.PaymentIntentID {
		return nil, ErrIntentMismatch
	}

	sel, err := s.ready(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !state.covers(sel) {
		if err := s.dropStaleIntent(ctx, ownerID, state); err != nil {
			return nil, err
		}
		return nil, ErrStaleIntent
	}

	// the payment form can take longer than the hold TTL
	if err := s.hold(ctx, ownerID, sel); err != nil {
		return nil, err
	}

	if state.AttemptID != "" {
		s.mark(ctx, state.AttemptID, AttemptStatusSucceeded, "", "")
	}

	event := notifications.NewEvent(notifications.EventPaymentCompleted, ownerID)
	event.PaymentIntentID = intentID
	event.PaymentMethod = string(bookings.PaymentMethodCard)
	event.Currency = s.opts.Currency
	event.VehicleID = sel.SelectedVehicle.ID
	event.BookingDate = sel.BookingDate
	event.SeatKeys = keyStrings(sel.KeyList())
	event.Amount = sel.TotalAmount()
	s.publisher.Publish(ctx, event)

	if err := s.finish(ctx, ownerID); err != nil {
		return nil, err
	}
	return &Result{Redirect: RedirectConfirmation}, nil
}

// finish ends a successful checkout. The state goes first so the reset
// hook has no open intent to abandon.
func (s *service) finish(ctx context.Context, ownerID string) error {
	if err := s.states.Delete(ctx, ownerID); err != nil {
		return err
	}
	return s.selections.Reset(ctx, ownerID)
}

func (s *service) Clear(ctx context.Context, ownerID string) error {
	state, err := s.states.Load(ctx, ownerID)
	if err != nil {
		return err
	}
	s.abandon(ctx, ownerID, state)
	return s.states.Delete(ctx, ownerID)
}

func (s *service) Config(ctx context.Context) (*PaymentSettings, error) {
	var settings PaymentSettings
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_PAYMENT_SETTINGS, constants.TTL_PAYMENT_SETTINGS,
		func(ctx context.Context) (interface{}, error) {
			return s.payments.GetSettings(ctx)
		}, &settings)
	if err != nil {
		return nil, err
	}
	if settings.Currency == "" {
		settings.Currency = s.opts.Currency
	}
	return &settings, nil
}

func (s *service) Attempts(ctx context.Context, ownerID string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	attempts, err := s.ledger.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout attempts: %w", err)
	}
	return attempts, nil
}

// bookingRequest builds the booking body from the selection. There is no
// discount model, so the final amount is the derived total.
func (s *service) bookingRequest(sel *selection.State) (bookings.CreateBookingRequest, error) {
	day, ok := sel.Date(time.UTC)
	if !ok {
		return bookings.CreateBookingRequest{}, ErrPreconditionFailed
	}

	seatRefs := make([]bookings.SeatRef, len(sel.SelectedSeats))
	for i, seat := range sel.SelectedSeats {
		seatRefs[i] = bookings.SeatRef{
			Key:    seat.Key,
			Number: seat.Number,
			Type:   seat.Type,
			Price:  seat.Price,
		}
	}

	req := bookings.CreateBookingRequest{
		VehicleID:       sel.SelectedVehicle.ID,
		VendorID:        sel.SelectedVehicle.VendorID,
		RouteID:         sel.SelectedVehicle.RouteID,
		BoardingPointID: sel.SelectedBoardingPoint.ID,
		BookingDate:     bookings.NewDay(day.Year(), day.Month(), day.Day()),
		SeatNumbers:     seatRefs,
		TotalAmount:     sel.TotalAmount(),
		DiscountAmount:  0,
		FinalAmount:     sel.TotalAmount(),
	}
	if sel.SelectedDroppingPoint != nil {
		req.DroppingPointID = sel.SelectedDroppingPoint.ID
	}
	return req, nil
}

func (s *service) newAttempt(ownerID string, sel *selection.State, method Method) *Attempt {
	return &Attempt{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		VehicleID:   sel.SelectedVehicle.ID,
		BookingDate: sel.BookingDate,
		Method:      method,
		SeatCount:   len(sel.SelectedSeats),
		Amount:      sel.TotalAmount(),
		Currency:    s.opts.Currency,
		Status:      AttemptStatusPending,
	}
}

// record and mark write the ledger. Failures are logged and never fail
// the checkout.
func (s *service) record(ctx context.Context, attempt *Attempt) {
	if err := s.ledger.Create(ctx, attempt); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to record checkout attempt", err, map[string]interface{}{
			"attempt_id": attempt.ID,
			"owner_id":   attempt.OwnerID,
		})
	}
}

func (s *service) mark(ctx context.Context, attemptID string, status AttemptStatus, externalRef, reason string) {
	if err := s.ledger.UpdateStatus(ctx, attemptID, status, externalRef, reason); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to update checkout attempt", err, map[string]interface{}{
			"attempt_id": attemptID,
			"status":     string(status),
		})
	}
}

func keyStrings(keys []seatmap.SeatKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
