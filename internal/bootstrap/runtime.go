package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/adapters/authroles"
	"github.com/target/mmk-ui-client/internal/adapters/credfile"
	"github.com/target/mmk-ui-client/internal/adapters/credredis"
	"github.com/target/mmk-ui-client/internal/adapters/devauth"
	"github.com/target/mmk-ui-client/internal/adapters/oidc"
	"github.com/target/mmk-ui-client/internal/cache"
	"github.com/target/mmk-ui-client/internal/observability/statsd"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/service"
	"github.com/target/mmk-ui-client/internal/session"
	"github.com/target/mmk-ui-client/internal/transport"
)

// Runtime is the fully wired client: transport plus feature services.
type Runtime struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Client  *transport.Client
	Session *session.Store

	Auth    *service.AuthService
	Sites   *service.SiteService
	Sources *service.SourceService
	Jobs    *service.JobService
	Alerts  *service.AlertService

	metrics *statsd.Client
	redis   *redis.Client
}

// Build wires a Runtime from configuration. Hooks receive auth lifecycle
// notifications and may be zero.
func Build(ctx context.Context, cfg config.AppConfig, hooks transport.Hooks, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = InitLogger(cfg.IsDev)
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.StatsdEnabled,
		Address: cfg.Observability.StatsdAddress,
		Prefix:  cfg.Observability.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: logger, Session: session.NewStore(), metrics: metrics}

	creds, err := rt.buildCredentialStore(cfg)
	if err != nil {
		return nil, err
	}

	client, err := transport.NewClient(transport.Options{
		BaseURL:        cfg.API.BaseURL,
		Variant:        cfg.Auth.Variant,
		Credentials:    creds,
		Session:        rt.Session,
		Hooks:          hooks,
		UserAgent:      cfg.API.UserAgent,
		Timeout:        cfg.API.Timeout,
		RefreshTimeout: cfg.Auth.RefreshTimeout,
		Logger:         logger,
		Metrics:        metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}
	rt.Client = client

	responseCache, err := rt.buildCache(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildLoginProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := rt.buildServices(cfg, creds, responseCache, provider); err != nil {
		return nil, err
	}
	return rt, nil
}

// Close releases the runtime's connections.
func (r *Runtime) Close() error {
	var errs []error
	if r.metrics != nil {
		if err := r.metrics.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close metrics: %w", err))
		}
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// buildCredentialStore selects where the token variant persists its pair.
// The cookie variant persists nothing client-side.
func (r *Runtime) buildCredentialStore(cfg config.AppConfig) (ports.CredentialStore, error) {
	if cfg.Auth.Variant != config.AuthVariantToken {
		return nil, nil
	}

	// A shared Redis deployment takes precedence when the cache backend
	// already requires the connection.
	if cfg.Cache.Backend == config.CacheBackendRedis {
		store, err := credredis.New(r.redisClient(cfg), "default")
		if err != nil {
			return nil, fmt.Errorf("build redis credential store: %w", err)
		}
		return store, nil
	}

	store, err := credfile.New(cfg.Auth.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("build credential file store: %w", err)
	}
	return store, nil
}

// buildCache selects the response cache backend, or none when disabled.
func (r *Runtime) buildCache(cfg config.AppConfig) (ports.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return cache.NewRedis(r.redisClient(cfg), ""), nil
	case config.CacheBackendMemory:
		return cache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// redisClient lazily opens the shared Redis connection.
func (r *Runtime) redisClient(cfg config.AppConfig) *redis.Client {
	if r.redis == nil {
		r.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return r.redis
}

// buildLoginProvider wires the cookie variant's SSO provider. The token
// variant logs in with a direct credentials POST and needs none.
func buildLoginProvider(ctx context.Context, cfg config.AppConfig) (ports.LoginProvider, error) {
	if cfg.Auth.Variant != config.AuthVariantCookie {
		return nil, nil
	}

	switch cfg.Auth.LoginMode {
	case config.LoginModeMock:
		provider, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.Auth.DevAuth.UserID,
			Email:  cfg.Auth.DevAuth.Email,
			Groups: cfg.Auth.DevAuth.Groups,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev login provider: %w", err)
		}
		return provider, nil
	case config.LoginModeOAuth:
		provider, err := oidc.NewProvider(ctx, oidc.Config{
			IssuerURL:    cfg.Auth.OAuth.DiscoveryURL,
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc login provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported login mode %q", cfg.Auth.LoginMode)
	}
}

func (r *Runtime) buildServices(
	cfg config.AppConfig,
	creds ports.CredentialStore,
	responseCache ports.Cache,
	provider ports.LoginProvider,
) error {
	roles := authroles.StaticMapper{
		AdminGroup: cfg.Auth.AdminGroup,
		UserGroup:  cfg.Auth.UserGroup,
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Client:      r.Client,
		Credentials: creds,
		Session:     r.Session,
		Provider:    provider,
		Roles:       roles,
		Logger:      r.Logger,
	})
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}

	sites, err := service.NewSiteService(service.SiteServiceOptions{
		Client:  r.Client,
		Cache:   responseCache,
		Logger:  r.Logger,
		ListTTL: cfg.Cache.TTL,
	})
	if err != nil {
		return fmt.Errorf("build site service: %w", err)
	}

	sources, err := service.NewSourceService(service.SourceServiceOptions{
		Client:  r.Client,
		Cache:   responseCache,
		Logger:  r.Logger,
		ListTTL: cfg.Cache.TTL,
	})
	if err != nil {
		return fmt.Errorf("build source service: %w", err)
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Client: r.Client,
		Logger: r.Logger,
	})
	if err != nil {
		return fmt.Errorf("build job service: %w", err)
	}

	alerts, err := service.NewAlertService(service.AlertServiceOptions{
		Client:  r.Client,
		Cache:   responseCache,
		Logger:  r.Logger,
		ListTTL: cfg.Cache.TTL,
	})
	if err != nil {
		return fmt.Errorf("build alert service: %w", err)
	}

	r.Auth = auth
	r.Sites = sites
	r.Sources = sources
	r.Jobs = jobs
	r.Alerts = alerts
	return nil
}
