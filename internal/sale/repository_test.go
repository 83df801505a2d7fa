package sale

import (
	"context"
	"testing"
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The sales table is created with explicit DDL because the production column
// defaults are Postgres functions SQLite cannot evaluate. The UNIQUE
// constraint on listing_id is the part under test.
const salesTestSchema = `
CREATE TABLE sales (
	id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	listing_id TEXT NOT NULL UNIQUE,
	seller_id TEXT NOT NULL,
	buyer_id TEXT,
	sold_at DATETIME NOT NULL
)`

func setupSaleRepo(t *testing.T) Repository {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec("DROP TABLE IF EXISTS sales").Error)
	require.NoError(t, db.Exec(salesTestSchema).Error)

	return NewGORMRepository(db)
}

func newSaleRow(listingID uuid.UUID) *Sale {
	s := &Sale{
		ListingID: listingID,
		SellerID:  uuid.New(),
		SoldAt:    time.Now(),
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	return s
}

func TestRepository_Create_UniquePerListing(t *testing.T) {
	repo := setupSaleRepo(t)
	ctx := context.Background()
	listingID := uuid.New()

	first := newSaleRow(listingID)
	require.NoError(t, repo.Create(ctx, first))

	second := newSaleRow(listingID)
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, common.ErrAlreadySold)

	// The original record is untouched.
	stored, err := repo.FindByListingID(ctx, listingID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, first.SellerID, stored.SellerID)
}

func TestRepository_FindByListingID_NotSold(t *testing.T) {
	repo := setupSaleRepo(t)
	ctx := context.Background()

	s, err := repo.FindByListingID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, s)
}
