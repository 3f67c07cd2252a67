package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	UploadTimeout      = 2 * time.Minute
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SessionCookieName = "fabr_auth_token"
	DefaultSessionTTL = 24 * time.Hour
	DefaultSeason     = "2025"
	SaoPauloTimezone  = "America/Sao_Paulo"
)

const (
	ReportTopLimit    = 10
	MaxUploadSize     = 32 << 20
	MaxArticleImage   = 5 << 20
	MaxAuthorImage    = 2 << 20
	LoginLimiterTTL   = 10 * time.Minute
	LoginLimiterPrune = 2 * time.Minute
)
