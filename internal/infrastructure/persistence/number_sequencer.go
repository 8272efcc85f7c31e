package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// numberSequence is the per-tenant, per-series counter row
type numberSequence struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_number_sequences_tenant_series"`
	Series    shared.Series `gorm:"not null;uniqueIndex:idx_number_sequences_tenant_series"`
	Counter   int64         `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (numberSequence) TableName() string {
	return "number_sequences"
}

// GormNumberSequencer implements shared.NumberSequencer with a counter
// table. The increment is a single UPDATE, so concurrent callers for the
// same tenant+series serialize on the row lock and numbers are never
// issued twice.
type GormNumberSequencer struct {
	db *gorm.DB
}

// NewGormNumberSequencer creates a new GormNumberSequencer
func NewGormNumberSequencer(db *gorm.DB) *GormNumberSequencer {
	return &GormNumberSequencer{db: db}
}

// NextNumber increments the counter for the tenant+series and returns the
// formatted document number. Joins the caller's transaction when one is
// active so a rolled-back document creation does not consume a number.
func (s *GormNumberSequencer) NextNumber(ctx context.Context, tenantID uuid.UUID, series shared.Series, prefix string) (string, error) {
	if prefix == "" {
		prefix = series.DefaultPrefix()
	}

	var counter int64
	err := session(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		seed := numberSequence{
			ID:       uuid.New(),
			TenantID: tenantID,
			Series:   series,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		// The UPDATE takes the row lock; reading back inside the same
		// transaction returns the value this caller incremented to.
		if err := tx.Model(&numberSequence{}).
			Where("tenant_id = ? AND series = ?", tenantID, series).
			Updates(map[string]interface{}{
				"counter":    gorm.Expr("counter + 1"),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.Model(&numberSequence{}).
			Where("tenant_id = ? AND series = ?", tenantID, series).
			Select("counter").
			Scan(&counter).Error
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%05d", prefix, counter), nil
}

// Ensure GormNumberSequencer implements NumberSequencer
var _ shared.NumberSequencer = (*GormNumberSequencer)(nil)
