package vehicles

import (
	"context"
	"fmt"
	"net/url"

	"busline/internal/backend"
)

type Repository interface {
	GetVehicleByID(ctx context.Context, id string) (*Vehicle, error)
}

type repository struct {
	client *backend.Client
}

func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) GetVehicleByID(ctx context.Context, id string) (*Vehicle, error) {
	body, err := r.client.Get(ctx, "/vehicles/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	vehicle, err := backend.DecodeData[Vehicle](body)
	if err != nil {
		return nil, fmt.Errorf("decode vehicle: %w", err)
	}
	return &vehicle, nil
}
