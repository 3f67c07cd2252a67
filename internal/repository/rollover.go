package repository

import (
	"context"
	"fmt"

	"fabr-admin/internal/db"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
)

type RolloverRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewRolloverRepository(queries *db.Queries, logger zerolog.Logger) *RolloverRepository {
	return &RolloverRepository{queries: queries, logger: logger}
}

func (r *RolloverRepository) Create(ctx context.Context, ro domain.Rollover) error {
	err := r.queries.CreateRollover(ctx, db.CreateRolloverParams{
		ID:             ro.ID,
		CurrentSeason:  ro.CurrentSeason,
		TargetSeason:   ro.TargetSeason,
		TeamChanges:    int64(ro.TeamChanges),
		Transfers:      int64(ro.Transfers),
		TeamsCreated:   int64(ro.TeamsCreated),
		PlayersCreated: int64(ro.PlayersCreated),
		SubmittedAt:    ro.SubmittedAt.UTC(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("target_season", ro.TargetSeason).Msg("failed to record rollover")
		return fmt.Errorf("failed to record rollover: %w", err)
	}
	return nil
}

// List returns the most recent rollovers first.
func (r *RolloverRepository) List(ctx context.Context, limit int) ([]domain.Rollover, error) {
	rows, err := r.queries.ListRollovers(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list rollovers: %w", err)
	}

	result := make([]domain.Rollover, len(rows))
	for i, ro := range rows {
		result[i] = domain.Rollover{
			ID:             ro.ID,
			CurrentSeason:  ro.CurrentSeason,
			TargetSeason:   ro.TargetSeason,
			TeamChanges:    int(ro.TeamChanges),
			Transfers:      int(ro.Transfers),
			TeamsCreated:   int(ro.TeamsCreated),
			PlayersCreated: int(ro.PlayersCreated),
			SubmittedAt:    ro.SubmittedAt,
		}
	}
	return result, nil
}
