package db

import (
	"context"
	"time"
)

const upsertDraft = `-- name: UpsertDraft :one
INSERT INTO rollover_drafts (current_season, target_season, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (current_season, target_season) DO UPDATE SET
    updated_at = excluded.updated_at
RETURNING id
`

type UpsertDraftParams struct {
	CurrentSeason string
	TargetSeason  string
	UpdatedAt     time.Time
}

func (q *Queries) UpsertDraft(ctx context.Context, arg UpsertDraftParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertDraft, arg.CurrentSeason, arg.TargetSeason, arg.UpdatedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getDraft = `-- name: GetDraft :one
SELECT id, current_season, target_season, updated_at FROM rollover_drafts
WHERE current_season = ? AND target_season = ?
`

type GetDraftParams struct {
	CurrentSeason string
	TargetSeason  string
}

func (q *Queries) GetDraft(ctx context.Context, arg GetDraftParams) (RolloverDraft, error) {
	row := q.db.QueryRowContext(ctx, getDraft, arg.CurrentSeason, arg.TargetSeason)
	var i RolloverDraft
	err := row.Scan(
		&i.ID,
		&i.CurrentSeason,
		&i.TargetSeason,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteDraft = `-- name: DeleteDraft :exec
DELETE FROM rollover_drafts WHERE id = ?
`

func (q *Queries) DeleteDraft(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteDraft, id)
	return err
}

const listDraftTeamChanges = `-- name: ListDraftTeamChanges :many
SELECT id, draft_id, team_id, team_name, payload FROM draft_team_changes
WHERE draft_id = ?
ORDER BY id
`

func (q *Queries) ListDraftTeamChanges(ctx context.Context, draftID int64) ([]DraftTeamChange, error) {
	rows, err := q.db.QueryContext(ctx, listDraftTeamChanges, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftTeamChange
	for rows.Next() {
		var i DraftTeamChange
		if err := rows.Scan(
			&i.ID,
			&i.DraftID,
			&i.TeamID,
			&i.TeamName,
			&i.Payload,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertDraftTeamChange = `-- name: InsertDraftTeamChange :exec
INSERT INTO draft_team_changes (draft_id, team_id, team_name, payload)
VALUES (?, ?, ?, ?)
`

type InsertDraftTeamChangeParams struct {
	DraftID  int64
	TeamID   int64
	TeamName string
	Payload  string
}

func (q *Queries) InsertDraftTeamChange(ctx context.Context, arg InsertDraftTeamChangeParams) error {
	_, err := q.db.ExecContext(ctx, insertDraftTeamChange,
		arg.DraftID,
		arg.TeamID,
		arg.TeamName,
		arg.Payload,
	)
	return err
}

const deleteDraftTeamChanges = `-- name: DeleteDraftTeamChanges :exec
DELETE FROM draft_team_changes WHERE draft_id = ?
`

func (q *Queries) DeleteDraftTeamChanges(ctx context.Context, draftID int64) error {
	_, err := q.db.ExecContext(ctx, deleteDraftTeamChanges, draftID)
	return err
}

const listDraftTransfers = `-- name: ListDraftTransfers :many
SELECT id, draft_id, player_id, payload FROM draft_transfers
WHERE draft_id = ?
ORDER BY id
`

func (q *Queries) ListDraftTransfers(ctx context.Context, draftID int64) ([]DraftTransfer, error) {
	rows, err := q.db.QueryContext(ctx, listDraftTransfers, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftTransfer
	for rows.Next() {
		var i DraftTransfer
		if err := rows.Scan(
			&i.ID,
			&i.DraftID,
			&i.PlayerID,
			&i.Payload,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertDraftTransfer = `-- name: InsertDraftTransfer :exec
INSERT INTO draft_transfers (draft_id, player_id, payload)
VALUES (?, ?, ?)
`

type InsertDraftTransferParams struct {
	DraftID  int64
	PlayerID int64
	Payload  string
}

func (q *Queries) InsertDraftTransfer(ctx context.Context, arg InsertDraftTransferParams) error {
	_, err := q.db.ExecContext(ctx, insertDraftTransfer, arg.DraftID, arg.PlayerID, arg.Payload)
	return err
}

const deleteDraftTransfers = `-- name: DeleteDraftTransfers :exec
DELETE FROM draft_transfers WHERE draft_id = ?
`

func (q *Queries) DeleteDraftTransfers(ctx context.Context, draftID int64) error {
	_, err := q.db.ExecContext(ctx, deleteDraftTransfers, draftID)
	return err
}
