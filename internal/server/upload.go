package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"fabr-admin/internal/api"
	"fabr-admin/internal/constants"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	ImportTeamsPath   = "/admin/import/teams"
	ImportPlayersPath = "/admin/import/players"
	StatisticsPath    = "/admin/statistics"
	ReprocessPath     = "/admin/reprocess"
)

const uploadField = "arquivo"

var errorWriter = connect.NewErrorWriter()

func (s *AdminServer) importTeams(w http.ResponseWriter, r *http.Request) {
	s.serveUpload(w, r, func(ctx context.Context, file api.Upload) (json.RawMessage, error) {
		return s.importSvc.ImportTeams(ctx, file)
	})
}

func (s *AdminServer) importPlayers(w http.ResponseWriter, r *http.Request) {
	s.serveUpload(w, r, func(ctx context.Context, file api.Upload) (json.RawMessage, error) {
		return s.importSvc.ImportPlayers(ctx, file)
	})
}

func (s *AdminServer) updateStatistics(w http.ResponseWriter, r *http.Request) {
	s.serveUpload(w, r, func(ctx context.Context, file api.Upload) (json.RawMessage, error) {
		return s.importSvc.UpdateStatistics(ctx, file, gameSheet(r))
	})
}

func (s *AdminServer) reprocessGame(w http.ResponseWriter, r *http.Request) {
	s.serveUpload(w, r, func(ctx context.Context, file api.Upload) (json.RawMessage, error) {
		force, _ := strconv.ParseBool(r.FormValue("force"))
		return s.importSvc.ReprocessGame(ctx, file, gameSheet(r), force)
	})
}

func gameSheet(r *http.Request) api.GameSheet {
	return api.GameSheet{GameID: r.FormValue("id_jogo"), GameDate: r.FormValue("data_jogo")}
}

// serveUpload parses the multipart form, hands the spreadsheet to forward and
// relays the league API's answer.
func (s *AdminServer) serveUpload(w http.ResponseWriter, r *http.Request, forward func(context.Context, api.Upload) (json.RawMessage, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.UploadTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	file, err := readUpload(r)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}

	out, err := forward(ctx, file)
	if err != nil {
		s.writeUploadError(w, r, toConnect(ctx, err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("failed to write upload response")
	}
}

func readUpload(r *http.Request) (api.Upload, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return api.Upload{}, connect.NewError(connect.CodeResourceExhausted, errors.New("Arquivo muito grande"))
		}
		return api.Upload{}, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("formulário inválido: %w", err))
	}

	f, header, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		return api.Upload{}, nil
	}
	if err != nil {
		return api.Upload{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return api.Upload{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return api.Upload{Filename: header.Filename, Data: data}, nil
}

func (s *AdminServer) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if werr := errorWriter.Write(w, r, err); werr != nil {
		s.logger.Warn().Err(werr).Msg("failed to write upload error")
	}
}
