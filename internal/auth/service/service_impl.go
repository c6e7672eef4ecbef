package service

import (
	"context"
	"sync"
	"time"

	"github.com/evalworks/vendoreval/internal/auth/domain"
	"github.com/evalworks/vendoreval/internal/authz"
	"github.com/evalworks/vendoreval/internal/clock"
	"github.com/evalworks/vendoreval/internal/config"
	"github.com/evalworks/vendoreval/internal/userctx"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultSessionTTL = 12 * time.Hour

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
	Authz authz.Service
}

// Service keeps sessions in memory. A restart logs everyone out, which is
// acceptable for a review-cycle tool; the ledger itself never depends on
// session state.
type Service struct {
	log   *zap.Logger
	clock clock.Clock
	authz authz.Service
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func New(p Params) domain.Service {
	ttl := defaultSessionTTL
	if p.Cfg.SessionTTLHours > 0 {
		ttl = time.Duration(p.Cfg.SessionTTLHours) * time.Hour
	}
	return &Service{
		log:      p.Log.Named("auth.service"),
		clock:    p.Clock,
		authz:    p.Authz,
		ttl:      ttl,
		sessions: make(map[string]*domain.Session),
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	name := userctx.Normalize(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	isAdmin, err := s.authz.IsAdmin(name)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserName:  name,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	s.log.Info("user logged in",
		zap.String("user", name),
		zap.Bool("is_admin", isAdmin),
	)
	return &domain.LoginResult{Session: session, RawToken: session.Token}, nil
}

func (s *Service) Logout(_ context.Context, rawToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, rawToken)
	return nil
}

func (s *Service) Authenticate(_ context.Context, rawToken string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[rawToken]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if !s.clock.Now().Before(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, rawToken)
		s.mu.Unlock()
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}
