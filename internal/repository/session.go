package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fabr-admin/internal/db"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
)

type SessionRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewSessionRepository(queries *db.Queries, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{
		queries: queries,
		logger:  logger,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s domain.Session) error {
	err := r.queries.CreateSession(ctx, db.CreateSessionParams{
		Token:     s.Token,
		Username:  s.Username,
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("username", s.Username).Msg("failed to create session")
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get returns ErrNotFound when no session has the token.
func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	s, err := r.queries.GetSession(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &domain.Session{
		Token:     s.Token,
		Username:  s.Username,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.queries.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.queries.DeleteExpiredSessions(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		r.logger.Debug().Int64("count", n).Msg("expired sessions removed")
	}
	return n, nil
}
