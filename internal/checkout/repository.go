package checkout

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository is the checkout attempt ledger
type Repository interface {
	Create(ctx context.Context, attempt *Attempt) error
	UpdateStatus(ctx context.Context, id string, status AttemptStatus, externalRef, reason string) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Attempt, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, attempt *Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

// UpdateStatus moves an attempt to status. An empty externalRef keeps the
// stored one.
func (r *repository) UpdateStatus(ctx context.Context, id string, status AttemptStatus, externalRef, reason string) error {
	updates := map[string]interface{}{
		"status":         status,
		"failure_reason": reason,
	}
	if externalRef != "" {
		updates["external_ref"] = externalRef
	}

	result := r.db.WithContext(ctx).Model(&Attempt{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("checkout attempt %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Attempt, error) {
	var attempts []Attempt
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
