package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

// AuthService is the identity provider adapter: it issues tokens and
// publishes session changes to the broker.
type AuthService struct {
	principals PrincipalRepository
	resolver   *RoleResolver
	jwtManager *auth.JWTManager
	broker     *auth.Broker
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(principals PrincipalRepository, resolver *RoleResolver, jwtManager *auth.JWTManager, broker *auth.Broker, log *zap.Logger) *AuthService {
	return &AuthService{
		principals: principals,
		resolver:   resolver,
		jwtManager: jwtManager,
		broker:     broker,
		log:        log,
		now:        time.Now,
	}
}

type RegisterCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a principal with the patient role. Caregiver capability
// is granted separately by an administrator. Allow-listed admin addresses
// cannot be claimed here; see ProvisionAdmin.
func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand) (*domain.Principal, error) {
	email, err := validateRegistration(cmd)
	if err != nil {
		return nil, err
	}
	if s.resolver.IsAllowListed(email) {
		s.log.Warn("registration refused for reserved email")
		return nil, ErrEmailReserved
	}
	return s.createPrincipal(ctx, cmd, email, domain.RolePatient)
}

// ProvisionAdmin creates an administrator account. It is reached only from
// the operator CLI, never from the HTTP surface.
func (s *AuthService) ProvisionAdmin(ctx context.Context, cmd *RegisterCommand) (*domain.Principal, error) {
	email, err := validateRegistration(cmd)
	if err != nil {
		return nil, err
	}
	return s.createPrincipal(ctx, cmd, email, domain.RoleAdmin)
}

func validateRegistration(cmd *RegisterCommand) (string, error) {
	var errs []string
	email := normalizeEmail(cmd.Email)
	if email == "" || !strings.Contains(email, "@") {
		errs = append(errs, "email is invalid")
	}
	if len(cmd.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}
	return email, nil
}

func (s *AuthService) createPrincipal(ctx context.Context, cmd *RegisterCommand, email string, role domain.Role) (*domain.Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p := &domain.Principal{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		Role:         role,
	}
	if err := s.principals.Create(ctx, p); err != nil {
		return nil, storeErr("create principal", err, domain.ErrEmailTaken)
	}

	s.log.Info("principal registered",
		zap.String("principal_id", p.ID.String()),
		zap.String("role", string(role)),
	)
	return p, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.TokenPair, error) {
	p, err := s.principals.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, storeErr("get principal by email", err)
		}
		// Hash anyway so response time does not reveal whether the email exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	if p.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt",
			zap.String("principal_id", p.ID.String()),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{
		PrincipalID: p.ID,
		Email:       p.Email,
		Role:        p.Role,
	})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.broker.Publish(auth.SessionEvent{
		Kind:        auth.EventLogin,
		PrincipalID: p.ID,
		Email:       p.Email,
		IPAddress:   ip,
		At:          s.now(),
	})

	s.log.Info("principal logged in",
		zap.String("principal_id", p.ID.String()),
		zap.String("ip", ip),
	)
	return pair, nil
}

// Refresh issues a new token pair, re-reading the stored principal so a
// deleted account cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	p, err := s.principals.GetByID(ctx, claims.PrincipalID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(&domain.Claims{
		PrincipalID: p.ID,
		Email:       p.Email,
		Role:        p.Role,
	})
}

// Logout ends the caller's session. Tokens are stateless, so this only
// notifies subscribers; clients discard their tokens.
func (s *AuthService) Logout(ctx context.Context) error {
	sess, ok := auth.SessionFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	s.broker.Publish(auth.SessionEvent{
		Kind:        auth.EventLogout,
		PrincipalID: sess.PrincipalID,
		Email:       sess.Email,
		IPAddress:   sess.IPAddress,
		At:          s.now(),
	})
	return nil
}
