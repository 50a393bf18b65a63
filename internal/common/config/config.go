package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type StorageConfig struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	AutoMigrate bool
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieSecure bool
}

type IncidentConfig struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Enabled reports whether a ticketing endpoint has been configured.
func (c IncidentConfig) Enabled() bool {
	return c.URL != ""
}

type AppConfig struct {
	HTTPPort       string
	RequestTimeout time.Duration
	BcryptCost     int
	// TrustedProxies lists proxy CIDRs whose forwarding headers are believed.
	TrustedProxies []string
	Storage        StorageConfig
	Session        SessionConfig
	Incident       IncidentConfig
}

func LoadAppConfig() (AppConfig, error) {
	storage, err := loadStorageConfig()
	if err != nil {
		return AppConfig{}, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return AppConfig{}, err
	}

	incident, err := loadIncidentConfig()
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		BcryptCost:     getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),
		TrustedProxies: getListEnv("TRUSTED_PROXIES"),
		Storage:        storage,
		Session:        session,
		Incident:       incident,
	}, nil
}

// LoadStorageConfig is used by commands that only touch the database.
func LoadStorageConfig() (StorageConfig, error) {
	return loadStorageConfig()
}

func loadStorageConfig() (StorageConfig, error) {
	driver := strings.ToLower(getEnv("STORAGE_DRIVER", constants.DefaultStorageDriver))

	cfg := StorageConfig{
		Driver:      driver,
		SQLitePath:  getEnv("SQLITE_PATH", constants.DefaultSQLitePath),
		AutoMigrate: getBoolEnv("AUTO_MIGRATE", false),
	}

	switch driver {
	case DriverPostgres:
		databaseURL, err := mustEnv("DATABASE_URL")
		if err != nil {
			return StorageConfig{}, err
		}
		cfg.DatabaseURL = databaseURL
	case DriverSQLite:
	default:
		return StorageConfig{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", driver)
	}

	return cfg, nil
}

func loadSessionConfig() (SessionConfig, error) {
	secret, err := mustEnv("SESSION_SECRET")
	if err != nil {
		return SessionConfig{}, err
	}

	if err := validateSessionSecret(secret); err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		Secret:       secret,
		TTL:          getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		CookieSecure: getBoolEnv("SESSION_COOKIE_SECURE", false),
	}, nil
}

func loadIncidentConfig() (IncidentConfig, error) {
	cfg := IncidentConfig{
		URL:     getEnv("INCIDENT_API_URL", ""),
		Timeout: getDurationEnv("INCIDENT_TIMEOUT", constants.DefaultIncidentTimeout),
	}
	if cfg.URL == "" {
		return cfg, nil
	}

	username, err := mustEnv("INCIDENT_API_USER")
	if err != nil {
		return IncidentConfig{}, err
	}
	password, err := mustEnv("INCIDENT_API_PASSWORD")
	if err != nil {
		return IncidentConfig{}, err
	}

	cfg.Username = username
	cfg.Password = password
	return cfg, nil
}

func validateSessionSecret(secret string) error {
	if len(secret) < constants.SessionSecretMinLength {
		return commonerrors.ErrInvalidSessionSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
