package service

import (
	"bytes"
	"context"
	"encoding/json"

	"fabr-admin/internal/api"

	"github.com/rs/zerolog"
)

// ImportService forwards spreadsheet uploads to the league API.
type ImportService struct {
	api    LeagueAPI
	logger zerolog.Logger
}

func NewImportService(api LeagueAPI, logger zerolog.Logger) *ImportService {
	return &ImportService{api: api, logger: logger.With().Str("component", "imports").Logger()}
}

func (s *ImportService) ImportTeams(ctx context.Context, file api.Upload) (json.RawMessage, error) {
	if err := checkUpload(file); err != nil {
		return nil, err
	}
	out, err := s.api.ImportTeams(ctx, file)
	if err != nil {
		return nil, upstream("Falha ao importar times", err)
	}
	s.logger.Info().Str("arquivo", file.Filename).Msg("teams imported")
	return out, nil
}

func (s *ImportService) ImportPlayers(ctx context.Context, file api.Upload) (json.RawMessage, error) {
	if err := checkUpload(file); err != nil {
		return nil, err
	}
	out, err := s.api.ImportPlayers(ctx, file)
	if err != nil {
		return nil, upstream("Falha ao importar jogadores", err)
	}
	s.logger.Info().Str("arquivo", file.Filename).Msg("players imported")
	return out, nil
}

func (s *ImportService) UpdateStatistics(ctx context.Context, file api.Upload, game api.GameSheet) (json.RawMessage, error) {
	if err := checkUpload(file); err != nil {
		return nil, err
	}
	if err := checkGame(&game); err != nil {
		return nil, err
	}
	out, err := s.api.UpdateStatistics(ctx, file, game)
	if err != nil {
		return nil, upstream("Falha ao atualizar estatísticas", err)
	}
	s.logger.Info().Str("id_jogo", game.GameID).Str("data_jogo", game.GameDate).Msg("statistics updated")
	return out, nil
}

func (s *ImportService) ReprocessGame(ctx context.Context, file api.Upload, game api.GameSheet, force bool) (json.RawMessage, error) {
	if err := checkUpload(file); err != nil {
		return nil, err
	}
	if err := checkGame(&game); err != nil {
		return nil, err
	}
	out, err := s.api.ReprocessGame(ctx, file, game, force)
	if err != nil {
		return nil, upstream("Falha ao reprocessar jogo", err)
	}
	s.logger.Info().Str("id_jogo", game.GameID).Bool("force", force).Msg("game reprocessed")
	return out, nil
}

func (s *ImportService) ListProcessedGames(ctx context.Context) (json.RawMessage, error) {
	out, err := s.api.GetProcessedGames(ctx)
	if err != nil {
		return nil, upstream("Falha ao buscar jogos processados", err)
	}
	if isEmptyJSON(out) {
		out = json.RawMessage("[]")
	}
	return out, nil
}

func checkUpload(file api.Upload) error {
	if file.Filename == "" || len(file.Data) == 0 {
		return invalid("arquivo", "Selecione um arquivo")
	}
	return nil
}

func checkGame(game *api.GameSheet) error {
	trimAll(&game.GameID, &game.GameDate)
	if game.GameID == "" {
		return invalid("id_jogo", "ID do jogo é obrigatório")
	}
	if game.GameDate == "" {
		return invalid("data_jogo", "Data do jogo é obrigatória")
	}
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
