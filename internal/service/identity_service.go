package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PrincipalRepository interface {
	Create(ctx context.Context, p *domain.Principal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	// ListExcludingRole returns principals whose role differs from role,
	// ordered by email.
	ListExcludingRole(ctx context.Context, role domain.Role) ([]*domain.Principal, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	// Delete removes the principal; the store cascades to owned rows.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoleResolver determines what the calling principal may do. It reads the
// stored profile on every call so role changes take effect immediately.
type RoleResolver struct {
	principals  PrincipalRepository
	adminEmails map[string]struct{}
	log         *zap.Logger
}

func NewRoleResolver(principals PrincipalRepository, adminEmails []string, log *zap.Logger) *RoleResolver {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return &RoleResolver{principals: principals, adminEmails: set, log: log}
}

// IsAllowListed reports whether email carries deployment-level admin rights.
func (r *RoleResolver) IsAllowListed(email string) bool {
	_, ok := r.adminEmails[normalizeEmail(email)]
	return ok
}

func (r *RoleResolver) Resolve(ctx context.Context) (*domain.Identity, error) {
	sess, ok := auth.SessionFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	p, err := r.principals.GetByID(ctx, sess.PrincipalID)
	switch {
	case errors.Is(err, domain.ErrPrincipalNotFound):
		if r.IsAllowListed(sess.Email) {
			return &domain.Identity{PrincipalID: sess.PrincipalID, Email: sess.Email, Admin: true}, nil
		}
		return nil, ErrUnauthenticated
	case err != nil:
		return nil, storeErr("resolve principal", err)
	}

	return &domain.Identity{
		PrincipalID: p.ID,
		Email:       p.Email,
		Role:        p.Role,
		Admin:       p.Role == domain.RoleAdmin || r.IsAllowListed(p.Email) || r.IsAllowListed(sess.Email),
	}, nil
}

// RequireAdmin resolves the caller and fails with ErrForbidden unless it
// holds admin capability.
func (r *RoleResolver) RequireAdmin(ctx context.Context) (*domain.Identity, error) {
	id, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !id.Admin {
		r.log.Warn("admin operation denied",
			zap.String("principal_id", id.PrincipalID.String()),
			zap.String("role", string(id.Role)),
		)
		return nil, ErrForbidden
	}
	return id, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
