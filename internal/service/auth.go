package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"fabr-admin/internal/config"
	"fabr-admin/internal/domain"
	"fabr-admin/internal/repository"

	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const sessionTokenLength = 32

type AuthService struct {
	username string
	password string
	ttl      time.Duration
	sessions SessionStore
	clock    clockwork.Clock
	logger   zerolog.Logger
}

func NewAuthService(cfg *config.Config, sessions SessionStore, clock clockwork.Clock, logger zerolog.Logger) *AuthService {
	return &AuthService{
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		ttl:      cfg.SessionTTL,
		sessions: sessions,
		clock:    clock,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login checks the admin credential and opens a new session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		s.logger.Warn().Str("username", username).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := gonanoid.New(sessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.clock.Now().UTC()
	session := domain.Session{
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Time("expires_at", session.ExpiresAt).Msg("session created")
	return &session, nil
}

// Authenticate resolves a session token. Expired sessions are removed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	if !s.clock.Now().Before(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, ErrUnauthenticated
	}
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// RunJanitor removes expired sessions every interval until ctx is done.
func (s *AuthService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if _, err := s.sessions.DeleteExpired(ctx, s.clock.Now()); err != nil {
				s.logger.Warn().Err(err).Msg("session cleanup failed")
			}
		}
	}
}
