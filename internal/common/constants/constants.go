package constants

import "time"

const (
	PasswordMaxLength      = 72
	SessionSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultStorageDriver  = "postgres"
	DefaultSQLitePath     = "toggle-task.db"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultRequestTimeout = 5 * time.Second
	DefaultBcryptCost     = 12

	DefaultIncidentTimeout          = 10 * time.Second
	IncidentCircuitBreakerThreshold = 5
	IncidentCircuitBreakerReset     = 30 * time.Second

	RevokedSessionCleanupInterval = 1 * time.Hour

	RateLimitCleanupInterval         = 5 * time.Minute
	RateLimitLoginRequestsPerSecond  = 0.5
	RateLimitLoginBurst              = 5
	RateLimitSignupRequestsPerSecond = 0.2
	RateLimitSignupBurst             = 3

	SessionCookieName = "session"
	LoginPath         = "/login"
	CurrentTasksPath  = "/current"

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
	DefaultLogDir    = "/var/log/toggle-task"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
