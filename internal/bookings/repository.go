package bookings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"busline/internal/backend"
)

// Repository reaches the bookings owned by the backend
type Repository interface {
	GetVehicleBookings(ctx context.Context, vehicleID, day string) (Snapshot, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	ListBookings(ctx context.Context, page, limit int) (backend.List[Booking], error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Booking, error)
}

type repository struct {
	client *backend.Client
}

func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) GetVehicleBookings(ctx context.Context, vehicleID, day string) (Snapshot, error) {
	body, err := r.client.Get(ctx, "/bookings/vehicle/"+url.PathEscape(vehicleID), url.Values{"date": {day}})
	if err != nil {
		return nil, err
	}

	list, err := backend.DecodeList[SnapshotEntry](body)
	if err != nil {
		return nil, fmt.Errorf("decode vehicle bookings: %w", err)
	}
	return Snapshot(list.Items), nil
}

func (r *repository) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	body, err := r.client.Post(ctx, "/bookings", req)
	if err != nil {
		return nil, err
	}

	booking, err := backend.DecodeData[Booking](body)
	if err != nil {
		return nil, fmt.Errorf("decode created booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) ListBookings(ctx context.Context, page, limit int) (backend.List[Booking], error) {
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	body, err := r.client.Get(ctx, "/bookings", query)
	if err != nil {
		return backend.List[Booking]{}, err
	}

	list, err := backend.DecodeList[Booking](body)
	if err != nil {
		return backend.List[Booking]{}, fmt.Errorf("decode booking history: %w", err)
	}
	return list, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	body, err := r.client.Get(ctx, "/bookings/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	booking, err := backend.DecodeData[Booking](body)
	if err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) UpdateBookingStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Booking, error) {
	body, err := r.client.Patch(ctx, "/bookings/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	booking, err := backend.DecodeData[Booking](body)
	if err != nil {
		return nil, fmt.Errorf("decode updated booking: %w", err)
	}
	return &booking, nil
}
