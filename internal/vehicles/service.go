package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"busline/internal/backend"
	"busline/internal/shared/constants"
	"busline/pkg/cache"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidVehicle  = errors.New("vehicle has an invalid seat layout")
)

type Service interface {
	// GetVehicle returns the vehicle with a validated seat map and
	// absolute image URLs
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)
}

type service struct {
	repo           Repository
	cache          cache.Service
	publicAssetURL string
	cacheTTL       time.Duration
}

// NewService caches vehicles for cacheTTL, or TTL_VEHICLE_DETAIL when it
// is not positive
func NewService(repo Repository, cacheService cache.Service, publicAssetURL string, cacheTTL time.Duration) Service {
	if cacheTTL <= 0 {
		cacheTTL = constants.TTL_VEHICLE_DETAIL
	}
	return &service{
		repo:           repo,
		cache:          cacheService,
		publicAssetURL: strings.TrimRight(publicAssetURL, "/"),
		cacheTTL:       cacheTTL,
	}
}

func (s *service) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	var vehicle Vehicle

	err := s.cache.GetOrSet(ctx, constants.BuildVehicleDetailKey(id), s.cacheTTL,
		func(ctx context.Context) (interface{}, error) {
			return s.load(ctx, id)
		}, &vehicle)
	if err != nil {
		return nil, err
	}

	vehicle.Images = s.assetURLs(vehicle.Images)
	return &vehicle, nil
}

// load fetches and checks a vehicle; invalid layouts are never cached
func (s *service) load(ctx context.Context, id string) (*Vehicle, error) {
	vehicle, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
		}
		return nil, fmt.Errorf("failed to load vehicle %s: %w", id, err)
	}

	if err := vehicle.SeatMap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVehicle, id, err)
	}
	return vehicle, nil
}

func (s *service) assetURLs(images []string) []string {
	if len(images) == 0 {
		return images
	}
	out := make([]string, len(images))
	for i, img := range images {
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			out[i] = img
			continue
		}
		out[i] = s.publicAssetURL + "/" + strings.TrimLeft(img, "/")
	}
	return out
}
