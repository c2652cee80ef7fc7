package service

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/google/uuid"
)

// patientAccess gates reads and writes scoped to a single patient: admins,
// the patient themself, and caregivers holding a link row may proceed.
// A principal whose caregiver role was revoked keeps its link rows but
// loses access, since the stored role is re-read on every call.
type patientAccess struct {
	resolver *RoleResolver
	links    caregiver.Repository
}

func (a patientAccess) authorize(ctx context.Context, patientID uuid.UUID) (*domain.Identity, error) {
	id, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if id.Admin || id.PrincipalID == patientID {
		return id, nil
	}
	if !id.IsCaregiver() {
		return nil, ErrForbidden
	}

	linked, err := a.links.Exists(ctx, id.PrincipalID, patientID)
	if err != nil {
		return nil, storeErr("check caregiver link", err)
	}
	if !linked {
		return nil, ErrForbidden
	}
	return id, nil
}
