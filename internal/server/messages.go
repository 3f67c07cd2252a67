package server

import (
	"fabr-admin/internal/domain"
)

type Empty struct{}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

type SeasonRequest struct {
	Season string `json:"temporada,omitempty"`
}

type IDRequest struct {
	ID int `json:"id"`
}

type TeamsResponse struct {
	Teams []domain.Team `json:"times"`
}

type TeamResponse struct {
	Team *domain.Team `json:"time"`
}

type FilterRosterRequest struct {
	TeamID int    `json:"timeId"`
	Season string `json:"temporada,omitempty"`
	Term   string `json:"termo"`
}

type CompareTeamsRequest struct {
	Team1  int    `json:"time1Id"`
	Team2  int    `json:"time2Id"`
	Season string `json:"temporada,omitempty"`
}

type PlayersResponse struct {
	Players []domain.Player `json:"jogadores"`
}

type PlayerResponse struct {
	Player *domain.Player `json:"jogador"`
}

type PlayerSeasonRequest struct {
	ID     int    `json:"id"`
	Season string `json:"temporada,omitempty"`
}

type SearchPlayersRequest struct {
	Season string `json:"temporada,omitempty"`
	Term   string `json:"termo"`
}

type ArticlesResponse struct {
	Articles []domain.Article `json:"materias"`
}

type ArticleResponse struct {
	Article *domain.Article `json:"materia"`
}

type DraftRequest struct {
	domain.DraftKey
}

type TeamChangeRequest struct {
	domain.DraftKey
	Change domain.TeamChange `json:"change"`
}

type TransferRequest struct {
	domain.DraftKey
	Transfer domain.TransferInput `json:"transfer"`
}

// RemoveRequest drops the draft entry at Index.
type RemoveRequest struct {
	domain.DraftKey
	Index int `json:"index"`
}

type DraftResponse struct {
	Draft *domain.Draft `json:"draft"`
}

type RolloversResponse struct {
	Rollovers []domain.Rollover `json:"rollovers"`
}

type ReportsResponse struct {
	Reports []domain.Report `json:"relatorios"`
}

type RunReportRequest struct {
	ID     string `json:"id"`
	Season string `json:"temporada,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
