package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"fabr-admin/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	LeagueAPIBaseURL string
	AdminUsername    string
	AdminPassword    string
	DBPath           string
	ServerPort       string
	LogLevel         string
	DefaultSeason    string
	SessionTTL       time.Duration
	AllowedOrigins   []string
	NatsURL          string
	LoginRate        float64
	LoginBurst       float64
}

var seasonPattern = regexp.MustCompile(`^\d{4}$`)

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}
	return FromEnv(logger)
}

// FromEnv builds the config from the process environment only.
func FromEnv(logger zerolog.Logger) (*Config, error) {
	sessionTTL, err := getEnvDuration("SESSION_TTL", constants.DefaultSessionTTL)
	if err != nil {
		return nil, err
	}
	loginRate, err := getEnvFloat("LOGIN_RATE", 0.2)
	if err != nil {
		return nil, err
	}
	loginBurst, err := getEnvFloat("LOGIN_BURST", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LeagueAPIBaseURL: strings.TrimRight(getEnv("LEAGUE_API_BASE_URL", ""), "/"),
		AdminUsername:    getEnv("ADMIN_USERNAME", "fabrnetwork"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		DBPath:           getEnv("DB_PATH", "fabr-admin.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DefaultSeason:    getEnv("DEFAULT_SEASON", constants.DefaultSeason),
		SessionTTL:       sessionTTL,
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		NatsURL:          getEnv("NATS_URL", ""),
		LoginRate:        loginRate,
		LoginBurst:       loginBurst,
	}

	if cfg.LeagueAPIBaseURL == "" {
		return nil, fmt.Errorf("LEAGUE_API_BASE_URL is required")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if !seasonPattern.MatchString(cfg.DefaultSeason) {
		return nil, fmt.Errorf("DEFAULT_SEASON must be a four digit year, got %q", cfg.DefaultSeason)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	// The session cookie is only sent to exact origins.
	if slices.Contains(cfg.AllowedOrigins, "*") {
		return nil, fmt.Errorf("ALLOWED_ORIGINS cannot contain *, list the admin UI origins explicitly")
	}
	if len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS must list at least one origin")
	}

	logger.Info().
		Str("league_api", cfg.LeagueAPIBaseURL).
		Str("admin_username", cfg.AdminUsername).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("default_season", cfg.DefaultSeason).
		Dur("session_ttl", cfg.SessionTTL).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("nats_enabled", cfg.NatsURL != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
