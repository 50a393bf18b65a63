package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/AlibekovAA/toggle-task/internal/auth/cleanup"
	authhttp "github.com/AlibekovAA/toggle-task/internal/auth/http"
	authservice "github.com/AlibekovAA/toggle-task/internal/auth/service"
	"github.com/AlibekovAA/toggle-task/internal/common/clock"
	"github.com/AlibekovAA/toggle-task/internal/common/config"
	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/toggle-task/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/toggle-task/internal/common/http"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/session"
	"github.com/AlibekovAA/toggle-task/internal/common/validation"
	incidentclient "github.com/AlibekovAA/toggle-task/internal/incident/client"
	incidenthttp "github.com/AlibekovAA/toggle-task/internal/incident/http"
	incidentservice "github.com/AlibekovAA/toggle-task/internal/incident/service"
	taskhttp "github.com/AlibekovAA/toggle-task/internal/task/http"
	taskservice "github.com/AlibekovAA/toggle-task/internal/task/service"
	"github.com/AlibekovAA/toggle-task/internal/web"
)

const ServiceName = "toggle-task"

type App struct {
	Config   config.AppConfig
	Log      *logger.Logger
	Clock    clock.Clock
	Storage  *Storage
	Auth     *authservice.AuthService
	Tasks    *taskservice.TaskService
	Reporter *incidentservice.Reporter
	Renderer *web.Renderer

	clientIPs *commonhttp.ClientIPResolver
	limiter   *commonhttp.AuthRateLimiter
}

func NewLogger() (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), ServiceName, os.Getenv("LOG_LEVEL"))
}

// NewApp opens storage and wires every service. clk may be nil.
func NewApp(ctx context.Context, cfg config.AppConfig, log *logger.Logger, clk clock.Clock) (*App, error) {
	if clk == nil {
		clk = clock.NewRealClock()
	}

	clientIPs, err := commonhttp.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	storage, err := OpenStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	renderer, err := web.NewRenderer(log)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	validator := validation.New()
	ids := commoncrypto.NewUUIDGenerator()

	auth := authservice.NewAuthService(authservice.AuthServiceDeps{
		Users:       storage.Users,
		Revoked:     storage.Revoked,
		Hasher:      commoncrypto.NewBcryptHasher(cfg.BcryptCost),
		IDGenerator: ids,
		Sessions:    session.NewIssuer(cfg.Session.Secret, cfg.Session.TTL, ids, clk),
		Validator:   validator,
		Clock:       clk,
		Log:         log,
	})

	tasks := taskservice.NewTaskService(taskservice.TaskServiceDeps{
		Repo:        storage.Tasks,
		IDGenerator: ids,
		Validator:   validator,
		Clock:       clk,
		Log:         log,
	})

	reporterDeps := incidentservice.ReporterDeps{
		Validator: validator,
		Timeout:   cfg.Incident.Timeout,
		Log:       log,
	}
	if cfg.Incident.Enabled() {
		reporterDeps.Submitter = incidentclient.New(incidentclient.Config{
			URL:      cfg.Incident.URL,
			Username: cfg.Incident.Username,
			Password: cfg.Incident.Password,
			Timeout:  cfg.Incident.Timeout,
		})
	} else {
		log.Warnf("INCIDENT_API_URL is not set, issue reporting is disabled")
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Clock:    clk,
		Storage:  storage,
		Auth:     auth,
		Tasks:    tasks,
		Reporter: incidentservice.NewReporter(reporterDeps),
		Renderer: renderer,

		clientIPs: clientIPs,
	}, nil
}

// Handler builds the full route table wrapped in the base middleware chain.
func (a *App) Handler() http.Handler {
	if a.limiter == nil {
		a.limiter = commonhttp.NewAuthRateLimiter(a.clientIPs)
	}

	guard := session.RequireSession(a.Auth, a.Log)
	optional := session.LoadSession(a.Auth)

	mux := http.NewServeMux()
	mux.Handle("GET /health", commonhttp.HealthHandler(a.Log, a.Storage.Pinger))
	mux.Handle("GET /metrics", promhttp.Handler())

	authhttp.NewHandler(a.Auth, a.Renderer, authhttp.Config{
		CookieSecure:   a.Config.Session.CookieSecure,
		RequestTimeout: a.Config.RequestTimeout,
	}, a.Log).Register(mux, guard, a.limiter)
	taskhttp.NewHandler(a.Tasks, a.Renderer, a.Config.RequestTimeout, a.Log).Register(mux, guard)
	incidenthttp.NewHandler(a.Reporter, a.Renderer, a.Log).Register(mux, guard)
	a.Renderer.Register(mux, optional)

	return commonhttp.BuildBaseHandler(a.Log, mux, a.Renderer.PanicHandler())
}

// StartBackground launches the revoked session cleanup loop; it stops with ctx.
func (a *App) StartBackground(ctx context.Context) {
	authcleanup.RunOnce(ctx, a.Storage.Revoked, a.Clock, a.Log)
	go authcleanup.StartRevokedSessionCleanup(ctx, a.Storage.Revoked, a.Clock, constants.RevokedSessionCleanupInterval, a.Log)
}

func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	a.Storage.Close()
}
