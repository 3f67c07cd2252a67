package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"fabr-admin/internal/config"
	"fabr-admin/internal/constants"
	"fabr-admin/internal/events"
	fxmodules "fabr-admin/internal/fx"
	"fabr-admin/internal/metrics"
	"fabr-admin/internal/middleware"
	"fabr-admin/internal/server"
	"fabr-admin/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const sessionJanitorInterval = 15 * time.Minute

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	adminServer *server.AdminServer,
	authSvc *service.AuthService,
	limiter *middleware.Limiter,
	rec *metrics.Recorder,
	publisher events.Publisher,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	handler := adminServer.HTTPHandler(server.Options{
		Limiter:        limiter,
		Metrics:        rec,
		DB:             db,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      constants.UploadTimeout + 10*time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go authSvc.RunJanitor(janitorCtx, sessionJanitorInterval)
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			stopJanitor()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			publisher.Close()
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
