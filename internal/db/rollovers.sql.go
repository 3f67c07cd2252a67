package db

import (
	"context"
	"time"
)

const createRollover = `-- name: CreateRollover :exec
INSERT INTO rollovers (
    id, current_season, target_season, team_changes, transfers,
    teams_created, players_created, submitted_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRolloverParams struct {
	ID             string
	CurrentSeason  string
	TargetSeason   string
	TeamChanges    int64
	Transfers      int64
	TeamsCreated   int64
	PlayersCreated int64
	SubmittedAt    time.Time
}

func (q *Queries) CreateRollover(ctx context.Context, arg CreateRolloverParams) error {
	_, err := q.db.ExecContext(ctx, createRollover,
		arg.ID,
		arg.CurrentSeason,
		arg.TargetSeason,
		arg.TeamChanges,
		arg.Transfers,
		arg.TeamsCreated,
		arg.PlayersCreated,
		arg.SubmittedAt,
	)
	return err
}

const listRollovers = `-- name: ListRollovers :many
SELECT id, current_season, target_season, team_changes, transfers,
       teams_created, players_created, submitted_at
FROM rollovers
ORDER BY submitted_at DESC
LIMIT ?
`

func (q *Queries) ListRollovers(ctx context.Context, limit int64) ([]Rollover, error) {
	rows, err := q.db.QueryContext(ctx, listRollovers, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Rollover
	for rows.Next() {
		var i Rollover
		if err := rows.Scan(
			&i.ID,
			&i.CurrentSeason,
			&i.TargetSeason,
			&i.TeamChanges,
			&i.Transfers,
			&i.TeamsCreated,
			&i.PlayersCreated,
			&i.SubmittedAt,
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
