package service

import (
	"context"
	"encoding/json"
	"strings"

	"fabr-admin/internal/config"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
)

type TeamService struct {
	api           LeagueAPI
	defaultSeason string
	logger        zerolog.Logger
}

func NewTeamService(api LeagueAPI, cfg *config.Config, logger zerolog.Logger) *TeamService {
	return &TeamService{
		api:           api,
		defaultSeason: cfg.DefaultSeason,
		logger:        logger.With().Str("component", "teams").Logger(),
	}
}

func (s *TeamService) season(season string) string {
	if season = strings.TrimSpace(season); season != "" {
		return season
	}
	return s.defaultSeason
}

func (s *TeamService) ListTeams(ctx context.Context, season string) ([]domain.Team, error) {
	teams, err := s.api.GetTeams(ctx, s.season(season))
	if err != nil {
		return nil, upstream("Falha ao buscar times", err)
	}
	return teams, nil
}

func (s *TeamService) CreateTeam(ctx context.Context, team domain.Team) (*domain.Team, error) {
	cleanTeam(&team)
	if team.Name == "" {
		return nil, invalid("nome", "Nome do time é obrigatório")
	}
	if team.Abbreviation == "" {
		return nil, invalid("sigla", "Sigla é obrigatória")
	}
	team.ID = 0
	team.Season = s.season(team.Season)

	created, err := s.api.AddTeam(ctx, team)
	if err != nil {
		return nil, upstream("Falha ao criar time", err)
	}
	s.logger.Info().Str("nome", team.Name).Str("temporada", team.Season).Msg("team created")
	return created, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, team domain.Team) (*domain.Team, error) {
	if team.ID <= 0 {
		return nil, invalid("id", "ID do time é obrigatório")
	}
	cleanTeam(&team)
	team.Season = s.season(team.Season)

	updated, err := s.api.UpdateTeam(ctx, team)
	if err != nil {
		return nil, upstream("Falha ao atualizar time", err)
	}
	return updated, nil
}

func (s *TeamService) DeleteTeam(ctx context.Context, id int) error {
	if id <= 0 {
		return invalid("id", "ID do time é obrigatório")
	}
	if err := s.api.DeleteTeam(ctx, id); err != nil {
		return upstream("Falha ao excluir time", err)
	}
	s.logger.Info().Int("id", id).Msg("team deleted")
	return nil
}

// FilterRoster returns the roster of team teamID whose names contain term.
func (s *TeamService) FilterRoster(ctx context.Context, teamID int, season, term string) ([]domain.Player, error) {
	teams, err := s.ListTeams(ctx, season)
	if err != nil {
		return nil, err
	}
	team, ok := findTeam(teams, teamID)
	if !ok {
		return nil, ErrTeamNotFound
	}
	return FilterRoster(team, term), nil
}

func (s *TeamService) CompareTeams(ctx context.Context, team1, team2 int, season string) (json.RawMessage, error) {
	if team1 <= 0 || team2 <= 0 {
		return nil, invalid("time", "Selecione dois times")
	}
	if team1 == team2 {
		return nil, invalid("time2Id", "Selecione times diferentes")
	}
	out, err := s.api.CompareTeams(ctx, team1, team2, s.season(season))
	if err != nil {
		return nil, upstream("Falha ao comparar times", err)
	}
	if isEmptyJSON(out) {
		out = json.RawMessage("{}")
	}
	return out, nil
}

// FilterRoster matches player names case-insensitively. An empty term keeps everyone.
func FilterRoster(team domain.Team, term string) []domain.Player {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Player, 0, len(team.Players))
	for _, p := range team.Players {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

func findTeam(teams []domain.Team, id int) (domain.Team, bool) {
	for _, t := range teams {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Team{}, false
}

// cleanTeam trims every text field so blank inputs are left out of the payload.
func cleanTeam(t *domain.Team) {
	trimAll(&t.Name, &t.Abbreviation, &t.Color, &t.City, &t.StateFlag, &t.Founded,
		&t.Instagram, &t.Instagram2, &t.Logo, &t.Helmet, &t.Stadium, &t.President,
		&t.HeadCoach, &t.CoachInstagram, &t.OffensiveCoord, &t.DefensiveCoord, &t.Season)
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
