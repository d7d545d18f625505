package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-phases/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-phases/pkg/core"
	"github.com/joeydtaylor/steeze-phases/pkg/manifest"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // e.g. APP_MANIFEST
	DefaultManifest string // e.g. "manifest.toml"
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	DefaultListen   string
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithDefaultListen(addr string) Option   { return func(c *Config) { c.DefaultListen = addr } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "app",
		ManifestEnv:     "APP_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// ManifestPath is the manifest the service will load.
func (c Config) ManifestPath() string { return envOr(c.ManifestEnv, c.DefaultManifest) }

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := NewConfig(opts...)
	return fx.Options(
		fx.Supply(cfg),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger { return &fxevent.ZapLogger{Logger: l} }),
		// auth, loggers, metrics
		bundlefx.Module,
		fx.Provide(provideManifest),
		fx.Provide(providePipeline),
		fx.Provide(fx.Annotate(
			func(r *httpx.Router) http.Handler { return r },
			fx.ResultTags(`name:"app"`),
		)),
		fx.Invoke(registerHooks),
	)
}

// ---------- Pipeline ----------

func provideManifest(cfg Config, zl *zap.Logger) manifest.Config {
	p := cfg.ManifestPath()
	man, err := core.LoadConfig(p)
	if err != nil {
		zl.Fatal("manifest load failed", zap.Error(err), zap.String("path", p))
	}
	return man
}

type pipelineDeps struct {
	fx.In

	Manifest  manifest.Config
	Auth      *auth.Middleware
	LogMW     *logger.Middleware
	Collector *metrics.Collector
	Metrics   http.Handler `name:"metrics"`
	Log       *zap.Logger
}

func providePipeline(d pipelineDeps) (*httpx.Router, *core.Scheduler, error) {
	return core.BuildRouter(d.Manifest, core.BuildDeps{
		Auth:      d.Auth,
		LogMW:     d.LogMW,
		Collector: d.Collector,
		Metrics:   d.Metrics,
		Log:       d.Log,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger    *zap.Logger
	App       http.Handler `name:"app"`
	Scheduler *core.Scheduler
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, cfg.DefaultListen)
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, e := range d.Scheduler.Plan() {
				d.Logger.Debug("layer", zap.Stringer("entry", e))
			}
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
				return nil
			}
			d.Logger.Info("server starting (PLAINTEXT)",
				zap.String("service", cfg.Service),
				zap.String("addr", addr),
			)
			srv.TLSConfig = nil
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
