package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/pkg/logger"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

var (
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("booking status change not allowed")
)

type Service interface {
	// Snapshot returns the bookings on vehicleID for the calendar day of
	// date in the booking location.
	Snapshot(ctx context.Context, vehicleID string, date time.Time) (Snapshot, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	History(ctx context.Context, query HistoryQuery) (*HistoryResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Booking, error)
}

type service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) Service {
	if location == nil {
		location = time.UTC
	}
	return &service{repo: repo, location: location}
}

func (s *service) Snapshot(ctx context.Context, vehicleID string, date time.Time) (Snapshot, error) {
	day := date.In(s.location).Format(dateLayout)
	snapshot, err := s.repo.GetVehicleBookings(ctx, vehicleID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for vehicle %s on %s: %w", vehicleID, day, err)
	}
	return snapshot, nil
}

func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	return s.repo.CreateBooking(ctx, req)
}

func (s *service) History(ctx context.Context, query HistoryQuery) (*HistoryResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	list, err := s.repo.ListBookings(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking history: %w", err)
	}

	totalPages := (list.Total + limit - 1) / limit
	return &HistoryResponse{
		Items:      list.Items,
		Total:      list.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus checks the change against the booking's current status
// before forwarding it. A cancellation reason is only sent with CANCELLED.
func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Booking, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	current, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}

	if !current.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, req.Status)
	}

	if req.Status != StatusCancelled {
		req.CancellationReason = ""
	}

	updated, err := s.repo.UpdateBookingStatus(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}

	logger.GetDefault().InfoContext(ctx, "Booking Status Updated",
		"booking_id", id,
		"from", current.Status.String(),
		"to", req.Status.String(),
	)
	return updated, nil
}
