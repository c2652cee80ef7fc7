package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrincipalRepository struct {
	db *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("inserting principal: %w", err)
	}
	return nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error) {
	var p domain.Principal
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("selecting principal: %w", err)
	}
	return &p, nil
}

func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	var p domain.Principal
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&p).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("selecting principal by email: %w", err)
	}
	return &p, nil
}

func (r *PrincipalRepository) ListExcludingRole(ctx context.Context, role domain.Role) ([]*domain.Principal, error) {
	var out []*domain.Principal
	err := r.db.WithContext(ctx).
		Where("role <> ?", role).
		Order("email ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing principals: %w", err)
	}
	return out, nil
}

func (r *PrincipalRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Principal{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("updating role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

func (r *PrincipalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Principal{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting principal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}
