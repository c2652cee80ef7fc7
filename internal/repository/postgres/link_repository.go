package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const authoritativeOrder = "is_primary DESC, created_at DESC"

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Create(ctx context.Context, l *caregiver.Link) error {
	if err := r.db.WithContext(ctx).Omit("Caregiver").Create(l).Error; err != nil {
		return fmt.Errorf("inserting caregiver link: %w", err)
	}
	return nil
}

func (r *LinkRepository) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*caregiver.Link, error) {
	var out []*caregiver.Link
	err := r.db.WithContext(ctx).
		Where("caregiver_id = ?", caregiverID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing caregiver links: %w", err)
	}
	return out, nil
}

func (r *LinkRepository) FindAuthoritative(ctx context.Context, patientID uuid.UUID) (*caregiver.Link, error) {
	var l caregiver.Link
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order(authoritativeOrder).
		Take(&l).Error
	if err != nil {
		if isNotFound(err) {
			return nil, caregiver.ErrLinkNotFound
		}
		return nil, fmt.Errorf("selecting authoritative link: %w", err)
	}
	return &l, nil
}

func (r *LinkRepository) Exists(ctx context.Context, caregiverID, patientID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&caregiver.Link{}).
		Where("caregiver_id = ? AND patient_id = ?", caregiverID, patientID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking caregiver link: %w", err)
	}
	return n > 0, nil
}

func (r *LinkRepository) UpdateCaregiver(ctx context.Context, linkID, caregiverID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&caregiver.Link{}).
		Where("id = ?", linkID).
		Update("caregiver_id", caregiverID)
	if res.Error != nil {
		return fmt.Errorf("updating caregiver link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return caregiver.ErrLinkNotFound
	}
	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, linkID uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&caregiver.Link{}, "id = ?", linkID)
	if res.Error != nil {
		return fmt.Errorf("deleting caregiver link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return caregiver.ErrLinkNotFound
	}
	return nil
}

func (r *LinkRepository) ListCaregiverSummaries(ctx context.Context) ([]*caregiver.Summary, error) {
	var out []*caregiver.Summary
	err := r.db.WithContext(ctx).
		Table("profiles AS p").
		Select("p.id, p.email, p.first_name, p.last_name, p.created_at, COUNT(cp.id) AS patient_count").
		Joins("LEFT JOIN caregiver_patients cp ON cp.caregiver_id = p.id").
		Where("p.role = ?", domain.RoleCaregiver).
		Group("p.id").
		Order("p.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing caregivers: %w", err)
	}
	return out, nil
}
