// Package events publishes admin domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fabr-admin/internal/config"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	SubjectSeasonStarted  = "fabr.season.started"
	SubjectArticleCreated = "fabr.article.created"
)

type SeasonStarted struct {
	CurrentSeason  string    `json:"current_season"`
	TargetSeason   string    `json:"target_season"`
	TeamsCreated   int       `json:"teams_created"`
	PlayersCreated int       `json:"players_created"`
	TeamChanges    int       `json:"team_changes"`
	Transfers      int       `json:"transfers"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type ArticleCreated struct {
	ID        int       `json:"id"`
	Title     string    `json:"titulo"`
	Author    string    `json:"autor"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher emits events. Failures are logged, never returned.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any)
	Close()
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}
func (nopPublisher) Close()                               {}

// Nop discards every event.
func Nop() Publisher { return nopPublisher{} }

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	nc     conn
	logger zerolog.Logger
}

// New connects to NATS_URL, or returns a no-op publisher when it is unset.
func New(cfg *config.Config, logger zerolog.Logger) (Publisher, error) {
	if cfg.NatsURL == "" {
		logger.Info().Msg("NATS_URL not set, events disabled")
		return Nop(), nil
	}

	log := logger.With().Str("component", "events").Logger()
	opts := []nats.Option{
		nats.Name("fabr-admin"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Msg("connected to NATS")
	return &NATSPublisher{nc: nc, logger: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("subject", subject).Msg("failed to publish event")
		return
	}
	p.logger.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("event published")
}

func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to drain NATS connection")
	}
}
