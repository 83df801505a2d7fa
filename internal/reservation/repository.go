// File: internal/reservation/repository.go
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for reservation ledger operations.
type Repository interface {
	// Create inserts a reservation if and only if no live hold exists for
	// the listing at the given instant. Writers for the same listing are
	// serialized inside the transaction, so of two racing callers exactly
	// one wins and the other gets ErrAlreadyReserved.
	Create(ctx context.Context, r *Reservation, now time.Time) error

	// FindLive returns the listing's live reservation at the given instant,
	// or (nil, nil) when there is none. Expired and cancelled rows are
	// invisible here; they are not touched.
	FindLive(ctx context.Context, listingID uuid.UUID, now time.Time) (*Reservation, error)

	// Cancel marks the reservation row as cancelled.
	Cancel(ctx context.Context, r *Reservation) error

	// PurgeStale deletes cancelled rows and rows whose end_time fell before
	// the cutoff. Purely storage hygiene: nothing the engine reads ever
	// depends on these rows being gone.
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM reservation repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, res *Reservation, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row locks cannot serialize this check: when no live hold exists
		// there is no row to lock, and two racing transactions would both see
		// an empty result and both insert. The advisory lock is keyed on the
		// listing id and held until commit, so writers for the same listing
		// queue here. SQLite (used by the repository tests) has no advisory
		// locks; its whole-DB write lock already serializes the transaction.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", res.ListingID.String()).Error; err != nil {
				return fmt.Errorf("failed to acquire listing lock: %w", err)
			}
		}

		var existing Reservation
		err := tx.
			Where("listing_id = ? AND cancelled = ? AND end_time > ?", res.ListingID, false, now).
			First(&existing).Error
		if err == nil {
			return common.ErrAlreadyReserved
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for live reservation: %w", err)
		}

		if err := tx.Create(res).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) FindLive(ctx context.Context, listingID uuid.UUID, now time.Time) (*Reservation, error) {
	var res Reservation
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND cancelled = ? AND end_time > ?", listingID, false, now).
		Order("created_at DESC").
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find live reservation: %w", err)
	}
	return &res, nil
}

func (r *gormRepository) Cancel(ctx context.Context, res *Reservation) error {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ? AND cancelled = ?", res.ID, false).
		Update("cancelled", true)
	if result.Error != nil {
		return fmt.Errorf("failed to cancel reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Reservation not found or already cancelled.")
	}
	res.Cancelled = true
	return nil
}

func (r *gormRepository) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cancelled = ? OR end_time < ?", true, cutoff).
		Delete(&Reservation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge stale reservations: %w", result.Error)
	}
	return result.RowsAffected, nil
}
