package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fabr-admin/internal/db"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
)

type DraftRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewDraftRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *DraftRepository {
	return &DraftRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get loads the draft for key. A missing draft comes back empty, not as an error.
func (r *DraftRepository) Get(ctx context.Context, key domain.DraftKey) (*domain.Draft, error) {
	draft := &domain.Draft{
		Key:         key,
		TeamChanges: []domain.TeamChange{},
		Transfers:   []domain.Transfer{},
		TeamNames:   map[int]string{},
	}

	row, err := r.queries.GetDraft(ctx, db.GetDraftParams{
		CurrentSeason: key.CurrentSeason,
		TargetSeason:  key.TargetSeason,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return draft, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	draft.UpdatedAt = row.UpdatedAt

	changes, err := r.queries.ListDraftTeamChanges(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft team changes: %w", err)
	}
	for _, c := range changes {
		var change domain.TeamChange
		if err := json.Unmarshal([]byte(c.Payload), &change); err != nil {
			return nil, fmt.Errorf("failed to decode team change %d: %w", c.ID, err)
		}
		draft.TeamChanges = append(draft.TeamChanges, change)
		draft.TeamNames[int(c.TeamID)] = c.TeamName
	}

	transfers, err := r.queries.ListDraftTransfers(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft transfers: %w", err)
	}
	for _, t := range transfers {
		var transfer domain.Transfer
		if err := json.Unmarshal([]byte(t.Payload), &transfer); err != nil {
			return nil, fmt.Errorf("failed to decode transfer %d: %w", t.ID, err)
		}
		draft.Transfers = append(draft.Transfers, transfer)
	}

	return draft, nil
}

// Save replaces the stored changes and transfers of the draft, keeping their order.
func (r *DraftRepository) Save(ctx context.Context, draft *domain.Draft, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	id, err := qtx.UpsertDraft(ctx, db.UpsertDraftParams{
		CurrentSeason: draft.Key.CurrentSeason,
		TargetSeason:  draft.Key.TargetSeason,
		UpdatedAt:     now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	if err := qtx.DeleteDraftTeamChanges(ctx, id); err != nil {
		return fmt.Errorf("failed to clear draft team changes: %w", err)
	}
	if err := qtx.DeleteDraftTransfers(ctx, id); err != nil {
		return fmt.Errorf("failed to clear draft transfers: %w", err)
	}

	for _, change := range draft.TeamChanges {
		payload, err := json.Marshal(change)
		if err != nil {
			return fmt.Errorf("failed to encode team change %d: %w", change.TeamID, err)
		}
		err = qtx.InsertDraftTeamChange(ctx, db.InsertDraftTeamChangeParams{
			DraftID:  id,
			TeamID:   int64(change.TeamID),
			TeamName: draft.TeamNames[change.TeamID],
			Payload:  string(payload),
		})
		if err != nil {
			return fmt.Errorf("failed to insert team change %d: %w", change.TeamID, err)
		}
	}

	for _, transfer := range draft.Transfers {
		payload, err := json.Marshal(transfer)
		if err != nil {
			return fmt.Errorf("failed to encode transfer %d: %w", transfer.PlayerID, err)
		}
		err = qtx.InsertDraftTransfer(ctx, db.InsertDraftTransferParams{
			DraftID:  id,
			PlayerID: int64(transfer.PlayerID),
			Payload:  string(payload),
		})
		if err != nil {
			return fmt.Errorf("failed to insert transfer %d: %w", transfer.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit draft: %w", err)
	}
	draft.UpdatedAt = now.UTC()

	r.logger.Debug().
		Str("current_season", draft.Key.CurrentSeason).
		Str("target_season", draft.Key.TargetSeason).
		Int("team_changes", len(draft.TeamChanges)).
		Int("transfers", len(draft.Transfers)).
		Msg("draft saved")
	return nil
}

func (r *DraftRepository) Delete(ctx context.Context, key domain.DraftKey) error {
	row, err := r.queries.GetDraft(ctx, db.GetDraftParams{
		CurrentSeason: key.CurrentSeason,
		TargetSeason:  key.TargetSeason,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get draft: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	if err := qtx.DeleteDraftTeamChanges(ctx, row.ID); err != nil {
		return fmt.Errorf("failed to clear draft team changes: %w", err)
	}
	if err := qtx.DeleteDraftTransfers(ctx, row.ID); err != nil {
		return fmt.Errorf("failed to clear draft transfers: %w", err)
	}
	if err := qtx.DeleteDraft(ctx, row.ID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return tx.Commit()
}
