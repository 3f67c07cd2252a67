package server

import (
	"context"
	"errors"
	"net/http"

	"fabr-admin/internal/api"
	"fabr-admin/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

// toConnect maps a service error to a connect error whose message is safe to
// show in the admin UI.
func toConnect(ctx context.Context, err error) *connect.Error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		e := connect.NewError(connect.CodeInvalidArgument, errors.New(verr.Message))
		e.Meta().Set("Fabr-Field", verr.Field)
		return e
	}

	var uerr *service.UpstreamError
	if errors.As(err, &uerr) {
		zerolog.Ctx(ctx).Warn().Err(uerr.Err).Int("upstream_status", api.StatusOf(uerr.Err)).Msg(uerr.Message)
		return connect.NewError(upstreamCode(api.StatusOf(uerr.Err)), errors.New(uerr.Message))
	}

	switch {
	case errors.Is(err, service.ErrInvalidSeason):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrReportNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, service.ErrNoChanges),
		errors.Is(err, service.ErrSameTeam),
		errors.Is(err, service.ErrIndexOutOfRange):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}

	zerolog.Ctx(ctx).Error().Err(err).Msg("unhandled error")
	return connect.NewError(connect.CodeInternal, errors.New("Erro interno. Tente novamente."))
}

func upstreamCode(status int) connect.Code {
	switch status {
	case http.StatusNotFound:
		return connect.CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return connect.CodeInvalidArgument
	case http.StatusConflict:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeUnavailable
	}
}
