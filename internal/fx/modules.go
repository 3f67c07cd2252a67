package fx

import (
	"database/sql"

	"fabr-admin/internal/api"
	"fabr-admin/internal/catalog"
	"fabr-admin/internal/config"
	"fabr-admin/internal/database"
	"fabr-admin/internal/db"
	"fabr-admin/internal/events"
	"fabr-admin/internal/logger"
	"fabr-admin/internal/metrics"
	"fabr-admin/internal/middleware"
	"fabr-admin/internal/repository"
	"fabr-admin/internal/server"
	"fabr-admin/internal/service"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideConfig loads the config with a bootstrap logger, since the level
// of the real one comes from the config.
func ProvideConfig() (*config.Config, error) {
	return config.Load(logger.New())
}

func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logger.WithLevel(logger.New(), cfg.LogLevel)
}

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideLimiter(cfg *config.Config, clock clockwork.Clock) *middleware.Limiter {
	return middleware.NewLimiter(cfg.LoginRate, cfg.LoginBurst, clock)
}

var Module = fx.Options(
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideLogger),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(clockwork.NewRealClock),
	fx.Provide(metrics.New),
	fx.Provide(events.New),
	fx.Provide(catalog.Load),
	// repos
	fx.Provide(
		fx.Annotate(repository.NewSessionRepository, fx.As(new(service.SessionStore))),
		fx.Annotate(repository.NewDraftRepository, fx.As(new(service.DraftStore))),
		fx.Annotate(repository.NewRolloverRepository, fx.As(new(service.RolloverStore))),
	),
	// api client
	fx.Provide(fx.Annotate(api.NewLeagueClient, fx.As(new(service.LeagueAPI)))),
	// svc
	fx.Provide(service.NewAuthService),
	fx.Provide(service.NewTeamService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewArticleService),
	fx.Provide(service.NewSeasonService),
	fx.Provide(service.NewDashboardService),
	fx.Provide(service.NewImportService),
	// server
	fx.Provide(ProvideLimiter),
	fx.Provide(server.NewAdminServer),
)
