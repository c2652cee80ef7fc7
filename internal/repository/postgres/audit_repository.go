package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Omit("Actor").Create(entry).Error; err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// ListRecent leaves Actor nil for entries whose actor row is gone.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	return out, nil
}
