package service

import (
	"context"
	"fmt"
	"strings"

	"fabr-admin/internal/catalog"
	"fabr-admin/internal/config"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerService struct {
	api           LeagueAPI
	catalog       *catalog.Catalog
	defaultSeason string
	logger        zerolog.Logger
}

func NewPlayerService(api LeagueAPI, cat *catalog.Catalog, cfg *config.Config, logger zerolog.Logger) *PlayerService {
	return &PlayerService{
		api:           api,
		catalog:       cat,
		defaultSeason: cfg.DefaultSeason,
		logger:        logger.With().Str("component", "players").Logger(),
	}
}

func (s *PlayerService) season(season string) string {
	if season = strings.TrimSpace(season); season != "" {
		return season
	}
	return s.defaultSeason
}

func (s *PlayerService) ListPlayers(ctx context.Context, season string) ([]domain.Player, error) {
	players, err := s.api.GetPlayers(ctx, s.season(season))
	if err != nil {
		return nil, upstream("Falha ao buscar jogadores", err)
	}
	return players, nil
}

func (s *PlayerService) GetPlayerSeason(ctx context.Context, id int, season string) (*domain.Player, error) {
	if id <= 0 {
		return nil, invalid("id", "ID do jogador é obrigatório")
	}
	player, err := s.api.GetPlayerSeason(ctx, id, s.season(season))
	if err != nil {
		return nil, upstream("Falha ao buscar jogador", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

func (s *PlayerService) CreatePlayer(ctx context.Context, player domain.Player) (*domain.Player, error) {
	if err := s.prepare(&player); err != nil {
		return nil, err
	}
	player.ID = 0
	player.Statistics = player.Statistics.Compact()

	created, err := s.api.AddPlayer(ctx, player)
	if err != nil {
		return nil, upstream("Falha ao criar jogador", err)
	}
	s.logger.Info().Str("nome", player.Name).Int("time_id", player.TeamID).Msg("player created")
	return created, nil
}

// UpdatePlayer sends statistics as given, zeros included, so cleared cells
// overwrite the stored values.
func (s *PlayerService) UpdatePlayer(ctx context.Context, player domain.Player) (*domain.Player, error) {
	if player.ID <= 0 {
		return nil, invalid("id", "ID do jogador é obrigatório")
	}
	if err := s.prepare(&player); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdatePlayer(ctx, player)
	if err != nil {
		return nil, upstream("Falha ao atualizar jogador", err)
	}
	return updated, nil
}

func (s *PlayerService) DeletePlayer(ctx context.Context, id int) error {
	if id <= 0 {
		return invalid("id", "ID do jogador é obrigatório")
	}
	if err := s.api.DeletePlayer(ctx, id); err != nil {
		return upstream("Falha ao excluir jogador", err)
	}
	s.logger.Info().Int("id", id).Msg("player deleted")
	return nil
}

// SearchPlayers looks up players of a season by name or position.
func (s *PlayerService) SearchPlayers(ctx context.Context, season, term string) ([]domain.Player, error) {
	if strings.TrimSpace(term) == "" {
		return []domain.Player{}, nil
	}
	players, err := s.ListPlayers(ctx, season)
	if err != nil {
		return nil, err
	}
	return SearchPlayers(players, term), nil
}

// SearchPlayers matches term against name or position, ignoring case.
// An empty term matches nobody.
func SearchPlayers(players []domain.Player, term string) []domain.Player {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []domain.Player{}
	if term == "" {
		return out
	}
	for _, p := range players {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Position), term) {
			out = append(out, p)
		}
	}
	return out
}

// prepare validates and normalizes a player form in place.
func (s *PlayerService) prepare(p *domain.Player) error {
	trimAll(&p.Name, &p.FormingTeam, &p.Position, &p.Sector, &p.City, &p.Nationality,
		&p.Instagram, &p.Instagram2, &p.Jersey, &p.Season)

	if p.Name == "" {
		return invalid("nome", "Nome do jogador é obrigatório")
	}
	if p.Sector != "" && !s.catalog.IsSector(p.Sector) {
		return invalid("setor", fmt.Sprintf("Setor inválido: %s", p.Sector))
	}
	for _, n := range []struct {
		field string
		value int
	}{{"numero", p.Number}, {"idade", p.Age}, {"experiencia", p.Experience}} {
		if n.value < 0 {
			return invalid(n.field, "Valor não pode ser negativo")
		}
	}
	if p.Height < 0 || p.Weight < 0 {
		return invalid("altura", "Valor não pode ser negativo")
	}
	if err := s.validateStatistics(p.Statistics); err != nil {
		return err
	}

	p.Season = s.season(p.Season)
	return nil
}

func (s *PlayerService) validateStatistics(stats domain.Statistics) error {
	for group, fields := range stats {
		for name, v := range fields {
			field, ok := s.catalog.StatField(group, name)
			key := "estatisticas." + group + "." + name
			if !ok {
				return invalid(key, "Estatística desconhecida")
			}
			if v.IsText() && field.Type != "text" && !isNumeric(v.Text) {
				return invalid(key, "Valor deve ser numérico")
			}
		}
	}
	return nil
}

func isNumeric(s string) bool {
	_, err := domain.ParseMeasure(s)
	return err == nil
}
