package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	// ListRecent returns up to limit entries, newest first, with actors
	// preloaded where the actor row still exists.
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}

const (
	DefaultAuditListLimit = 100
	maxAuditListLimit     = 500
	systemActor           = "System"
)

type AuditOptions struct {
	BufferSize   int
	WriteTimeout time.Duration
	DrainTimeout time.Duration
}

// AuditService persists audit entries on a background worker. Appending never
// blocks and never fails the caller: overflow and write errors are logged.
type AuditService struct {
	repo     AuditRepository
	resolver *RoleResolver
	metrics  *metrics.Collector
	log      *zap.Logger
	opts     AuditOptions

	mu      sync.RWMutex
	closed  bool
	entries chan *domain.AuditLog
	done    chan struct{}
}

func NewAuditService(repo AuditRepository, resolver *RoleResolver, m *metrics.Collector, log *zap.Logger, opts AuditOptions) *AuditService {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 10_000
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 10 * time.Second
	}

	svc := &AuditService{
		repo:     repo,
		resolver: resolver,
		metrics:  m,
		log:      log,
		opts:     opts,
		entries:  make(chan *domain.AuditLog, opts.BufferSize),
		done:     make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// AppendEntry enqueues an entry for asynchronous persistence. A nil actor
// records the action as performed by the system.
func (s *AuditService) AppendEntry(actorID *uuid.UUID, action domain.AuditAction, details map[string]any, origin string) {
	entry := &domain.AuditLog{
		ActorID:   actorID,
		Action:    action,
		IPAddress: origin,
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			s.log.Error("failed to encode audit details", zap.String("action", string(action)), zap.Error(err))
		} else {
			entry.Details = datatypes.JSON(raw)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn("audit service closed, dropping entry", zap.String("action", string(action)))
		s.metrics.AuditDropped()
		return
	}

	select {
	case s.entries <- entry:
	default:
		s.log.Warn("audit log buffer full, dropping entry", zap.String("action", string(action)))
		s.metrics.AuditDropped()
	}
}

// Record appends an entry attributed to the session carried by ctx.
func (s *AuditService) Record(ctx context.Context, action domain.AuditAction, details map[string]any) {
	var actor *uuid.UUID
	if sess, ok := auth.SessionFromContext(ctx); ok {
		id := sess.PrincipalID
		actor = &id
	}
	s.AppendEntry(actor, action, details, auth.OriginFromContext(ctx))
}

// RecordSessionEvent is a session broker subscriber.
func (s *AuditService) RecordSessionEvent(ev auth.SessionEvent) {
	action := domain.ActionLogin
	if ev.Kind == auth.EventLogout {
		action = domain.ActionLogout
	}
	id := ev.PrincipalID
	s.AppendEntry(&id, action, map[string]any{"email": ev.Email}, ev.IPAddress)
}

type AuditEntryView struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Action    domain.AuditAction `json:"action"`
	Actor     string             `json:"actor"`
	Details   json.RawMessage    `json:"details,omitempty"`
	IPAddress string             `json:"ip_address,omitempty"`
}

// ListRecent returns the newest entries for administrators. Limits outside
// (0, 500] fall back to 100.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]*AuditEntryView, error) {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxAuditListLimit {
		limit = DefaultAuditListLimit
	}

	logs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, storeErr("list audit entries", err)
	}

	out := make([]*AuditEntryView, 0, len(logs))
	for _, l := range logs {
		out = append(out, &AuditEntryView{
			ID:        l.ID,
			CreatedAt: l.CreatedAt,
			Action:    l.Action,
			Actor:     actorLabel(l.Actor),
			Details:   json.RawMessage(l.Details),
			IPAddress: l.IPAddress,
		})
	}
	return out, nil
}

func actorLabel(p *domain.Principal) string {
	if p == nil {
		return systemActor
	}
	return fmt.Sprintf("%s (%s)", p.FullName(), p.Email)
}

// Shutdown stops accepting entries and waits up to the drain timeout for the
// buffer to flush.
func (s *AuditService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.entries)
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(s.opts.DrainTimeout):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist audit log",
				zap.String("action", string(entry.Action)),
				zap.Error(err),
			)
			s.metrics.AuditFailed()
		} else {
			s.metrics.AuditWritten()
		}
		cancel()
	}
}
