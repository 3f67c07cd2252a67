package service

import (
	"context"
	"encoding/json"
	"time"

	"fabr-admin/internal/api"
	"fabr-admin/internal/domain"
)

// LeagueAPI is the league REST API as the services use it.
// *api.LeagueClient implements it.
type LeagueAPI interface {
	GetTeams(ctx context.Context, season string) ([]domain.Team, error)
	AddTeam(ctx context.Context, team domain.Team) (*domain.Team, error)
	UpdateTeam(ctx context.Context, team domain.Team) (*domain.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	CompareTeams(ctx context.Context, team1, team2 int, season string) (json.RawMessage, error)

	GetPlayers(ctx context.Context, season string) ([]domain.Player, error)
	GetPlayerSeason(ctx context.Context, id int, season string) (*domain.Player, error)
	AddPlayer(ctx context.Context, player domain.Player) (*domain.Player, error)
	UpdatePlayer(ctx context.Context, player domain.Player) (*domain.Player, error)
	DeletePlayer(ctx context.Context, id int) error

	GetArticles(ctx context.Context) ([]domain.Article, error)
	CreateArticle(ctx context.Context, article domain.Article) (*domain.Article, error)
	UpdateArticle(ctx context.Context, id int, article domain.Article) (*domain.Article, error)
	DeleteArticle(ctx context.Context, id int) error

	StartSeason(ctx context.Context, year string, changes domain.RolloverChanges) (*domain.RolloverResult, error)

	ImportTeams(ctx context.Context, file api.Upload) (json.RawMessage, error)
	ImportPlayers(ctx context.Context, file api.Upload) (json.RawMessage, error)
	UpdateStatistics(ctx context.Context, file api.Upload, game api.GameSheet) (json.RawMessage, error)
	ReprocessGame(ctx context.Context, file api.Upload, game api.GameSheet, force bool) (json.RawMessage, error)
	GetProcessedGames(ctx context.Context) (json.RawMessage, error)
}

var _ LeagueAPI = (*api.LeagueClient)(nil)

type SessionStore interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DraftStore interface {
	Get(ctx context.Context, key domain.DraftKey) (*domain.Draft, error)
	Save(ctx context.Context, draft *domain.Draft, now time.Time) error
	Delete(ctx context.Context, key domain.DraftKey) error
}

type RolloverStore interface {
	Create(ctx context.Context, ro domain.Rollover) error
	List(ctx context.Context, limit int) ([]domain.Rollover, error)
}
