package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/target/authgate/config"
	"github.com/target/authgate/internal/data"
	"github.com/target/authgate/internal/observability/statsd"
	"github.com/target/authgate/internal/ports"
	"github.com/target/authgate/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Users         *service.UserAdmin
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is nil when metrics are disabled or the client failed to start.
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Sink returns the metrics sink to hand to services.
//
//nolint:ireturn // callers only need the Sink behaviour.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return statsd.NopSink{}
	}
	return o.MetricsSink
}

// Close releases the metrics client, if any.
func (o ObservabilityContainer) Close() error {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Users overrides the Postgres-backed store. Tests use it to run without a database.
	Users ports.UserStore
}

// buildObservability configures the metrics adapter.
// A StatsD failure is logged and metrics are disabled rather than failing startup.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// NewServices wires the domain services from configuration and infrastructure.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	users := deps.Users
	if users == nil {
		if deps.DB == nil {
			return ServiceContainer{}, errors.New("database is required")
		}
		users = data.NewUserRepo(deps.DB)
	}

	observability := buildObservability(logger, deps.Config.Observability)

	auth, err := BuildAuthService(AuthConfig{
		Auth:        deps.Config.Auth,
		Users:       users,
		RedisClient: deps.RedisClient,
		Metrics:     observability.Sink(),
		Logger:      logger,
	})
	if err != nil {
		if cerr := observability.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close metrics: %w", cerr))
		}
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Auth:          auth,
		Users:         service.NewUserAdmin(service.UserAdminOptions{Users: users, Logger: logger}),
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains dependencies for running the service.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Listener is optional; when nil the server listens on Config.HTTP.Addr.
	Listener net.Listener
}

// RunServicesWithShutdown serves HTTP until SIGINT or SIGTERM, then stops gracefully.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	return RunServices(context.Background(), cfg)
}

// RunServices serves HTTP until ctx is cancelled or a shutdown signal arrives.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	if err := ServeHTTP(sigCtx, srv, cfg.Listener, logger); err != nil {
		logger.Error("service error", "error", err)
		return err
	}
	logger.Info("services stopped")
	return nil
}
