package server

import (
	"context"
	"net/http"
	"time"

	"fabr-admin/internal/constants"
	"fabr-admin/internal/metrics"
	"fabr-admin/internal/middleware"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const ServicePath = "/fabr.admin.v1.AdminService/"

const (
	LoginProcedure  = ServicePath + "Login"
	LogoutProcedure = ServicePath + "Logout"
)

const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the HTTP surface around the RPC routes.
type Options struct {
	Limiter        *middleware.Limiter
	Metrics        *metrics.Recorder
	DB             Pinger
	AllowedOrigins []string
}

// HTTPHandler is the full admin surface: RPC and upload routes behind the
// session check, plus health and metrics.
func (s *AdminServer) HTTPHandler(opts Options) http.Handler {
	mux := http.NewServeMux()
	rpc := s.Handler()
	mux.Handle(ServicePath, rpc)
	mux.Handle("/admin/", rpc)
	mux.HandleFunc("GET "+HealthPath, s.health(opts.DB))
	mux.Handle("GET "+MetricsPath, opts.Metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID", "Fabr-Field"},
		AllowCredentials: true,
	})

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID(s.logger),
		middleware.SecurityHeaders,
		c.Handler,
	}
	if opts.Limiter != nil {
		mws = append(mws, middleware.RateLimit(opts.Limiter, LoginProcedure))
	}
	mws = append(mws, middleware.RequireSession(s.authSvc, LoginProcedure, HealthPath, MetricsPath))
	return middleware.Chain(mux, mws...)
}

func (s *AdminServer) health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				s.logger.Error().Err(err).Msg("health check failed")
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Debug().Err(err).Msg("failed to write health check response")
		}
	}
}

// Handler returns the admin RPC and upload routes.
func (s *AdminServer) Handler() http.Handler {
	opts := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(logCalls(), withTimeout(constants.RequestTimeout)),
	}

	mux := http.NewServeMux()
	mux.Handle(LoginProcedure, connect.NewUnaryHandler(LoginProcedure, s.Login, opts...))
	mux.Handle(LogoutProcedure, connect.NewUnaryHandler(LogoutProcedure, s.Logout, opts...))

	handle(mux, "Session", s.Session, opts)
	handle(mux, "GetFormSchema", s.GetFormSchema, opts)

	handle(mux, "ListTeams", s.ListTeams, opts)
	handle(mux, "CreateTeam", s.CreateTeam, opts)
	handle(mux, "UpdateTeam", s.UpdateTeam, opts)
	handle(mux, "DeleteTeam", s.DeleteTeam, opts)
	handle(mux, "FilterRoster", s.FilterRoster, opts)
	handle(mux, "CompareTeams", s.CompareTeams, opts)

	handle(mux, "ListPlayers", s.ListPlayers, opts)
	handle(mux, "GetPlayerSeason", s.GetPlayerSeason, opts)
	handle(mux, "CreatePlayer", s.CreatePlayer, opts)
	handle(mux, "UpdatePlayer", s.UpdatePlayer, opts)
	handle(mux, "DeletePlayer", s.DeletePlayer, opts)
	handle(mux, "SearchPlayers", s.SearchPlayers, opts)

	handle(mux, "ListArticles", s.ListArticles, opts)
	handle(mux, "CreateArticle", s.CreateArticle, opts)
	handle(mux, "UpdateArticle", s.UpdateArticle, opts)
	handle(mux, "DeleteArticle", s.DeleteArticle, opts)

	handle(mux, "LoadSeason", s.LoadSeason, opts)
	handle(mux, "GetDraft", s.GetDraft, opts)
	handle(mux, "AddTeamChange", s.AddTeamChange, opts)
	handle(mux, "RemoveTeamChange", s.RemoveTeamChange, opts)
	handle(mux, "AddTransfer", s.AddTransfer, opts)
	handle(mux, "RemoveTransfer", s.RemoveTransfer, opts)
	handle(mux, "SubmitRollover", s.SubmitRollover, opts)
	handle(mux, "ListRollovers", s.ListRollovers, opts)

	handle(mux, "ListReports", s.ListReports, opts)
	handle(mux, "RunReport", s.RunReport, opts)
	handle(mux, "ListProcessedGames", s.ListProcessedGames, opts)

	mux.HandleFunc("POST "+ImportTeamsPath, s.importTeams)
	mux.HandleFunc("POST "+ImportPlayersPath, s.importPlayers)
	mux.HandleFunc("POST "+StatisticsPath, s.updateStatistics)
	mux.HandleFunc("POST "+ReprocessPath, s.reprocessGame)
	return mux
}

// handle registers a unary procedure whose method only deals in messages.
func handle[Req, Res any](mux *http.ServeMux, method string, fn func(context.Context, *Req) (*Res, error), opts []connect.HandlerOption) {
	procedure := ServicePath + method
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
		res, err := fn(ctx, req.Msg)
		if err != nil {
			return nil, toConnect(ctx, err)
		}
		return connect.NewResponse(res), nil
	}, opts...))
}

func logCalls() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			event := zerolog.Ctx(ctx).Debug()
			if err != nil {
				event = zerolog.Ctx(ctx).Info().Str("code", connect.CodeOf(err).String())
			}
			event.Str("procedure", req.Spec().Procedure).
				Dur("duration", time.Since(start)).
				Msg("rpc handled")
			return res, err
		}
	}
}

// withTimeout bounds each RPC, including the league API calls it makes.
func withTimeout(d time.Duration) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
