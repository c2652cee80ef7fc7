package auth

import (
	"context"

	"github.com/google/uuid"
)

// Session is the authenticated caller attached to a request context.
// The role carried in the token is informational only; authorization
// decisions re-read the stored role.
type Session struct {
	PrincipalID uuid.UUID
	Email       string
	IPAddress   string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// OriginFromContext returns the caller's address, or "" outside a request.
func OriginFromContext(ctx context.Context) string {
	if s, ok := SessionFromContext(ctx); ok {
		return s.IPAddress
	}
	return ""
}
