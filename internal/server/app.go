// Package server wires the SecurePass server together: storage, secrets,
// guards, services, the JSON API and the gRPC health probe. It also handles
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/securepass/internal/cryptox"
	"github.com/dmitrijs2005/securepass/internal/logging"
	"github.com/dmitrijs2005/securepass/internal/server/auth"
	"github.com/dmitrijs2005/securepass/internal/server/backup"
	"github.com/dmitrijs2005/securepass/internal/server/config"
	"github.com/dmitrijs2005/securepass/internal/server/guard"
	"github.com/dmitrijs2005/securepass/internal/server/guard/redisstore"
	"github.com/dmitrijs2005/securepass/internal/server/httpapi"
	"github.com/dmitrijs2005/securepass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securepass/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/securepass/internal/server/grpc"
)

var (
	logOutput io.Writer = os.Stdout

	newPostgresManager = func(dsn string) (repomanager.RepositoryManager, error) {
		m, err := repomanager.NewPostgresRepositoryManager(dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	newBackupExporter = func(ctx context.Context, c backup.Config) (services.BackupExporter, error) {
		e, err := backup.NewS3Exporter(ctx, c)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	redis    *redis.Client
	counters guard.CounterStore
	// sweep is set when counters live in process memory.
	sweep    *guard.MemoryCounterStore
	tokens   *auth.TokenService
	users    *services.UserService
	vault    *services.VaultService
	pipeline *guard.Pipeline
}

// NewApp builds every component from c. The configuration is expected to
// have passed Validate.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(logOutput, c.Dev)

	envelope, err := cryptox.NewEnvelope([]byte(c.AESKey), c.Dev)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService([]byte(c.JWTSecret), c.TokenTTL, c.Dev)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, tokens: tokens}

	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}
	app.initCounters(ctx)

	var exporter services.BackupExporter
	if c.BackupEnabled() {
		exporter, err = newBackupExporter(ctx, backup.Config{
			Region:    c.S3Region,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3BaseEndpoint,
			Bucket:    c.S3Bucket,
		})
		if err != nil {
			app.close()
			return nil, fmt.Errorf("backup init error: %w", err)
		}
	}

	app.users, err = services.NewUserService(app.repos, tokens, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.vault = services.NewVaultService(app.repos, envelope, exporter, logger)

	app.pipeline = guard.NewPipeline(
		guard.NewBodySize(c.MaxBodyBytes),
		guard.ContentType{},
		guard.NewRateLimit(app.counters, guard.Policy{Limit: c.LoginRateLimit, Window: c.LoginRateWindow}, logger),
		guard.NewIdentity(tokens, app.users, logger),
	)

	if err := app.users.SeedAdmin(ctx, c.AdminUserName, c.AdminPassword); err != nil {
		logger.Error(ctx, "admin seed failed", "error", err)
	}

	logger.Info(ctx, "security configuration loaded",
		"aes_key_bits", envelope.KeyBits(),
		"token_ttl", tokens.TTL(),
		"backups", c.BackupEnabled(),
	)

	return app, nil
}

func (app *App) initStorage(ctx context.Context) error {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, records are kept in memory")
		app.repos = repomanager.NewInMemoryRepositoryManager()
		return nil
	}

	repos, err := newPostgresManager(app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return fmt.Errorf("db migration error: %w", err)
	}
	app.repos = repos
	return nil
}

func (app *App) initCounters(ctx context.Context) {
	if app.config.RedisAddr == "" {
		app.sweep = guard.NewMemoryCounterStore()
		app.counters = app.sweep
		return
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		// the limiter fails open, so the server can still start
		app.logger.Warn(ctx, "redis unreachable", "addr", app.config.RedisAddr, "error", err)
	}
	app.counters = redisstore.New(app.redis, "")
}

// Handler returns the JSON API with its middleware and guards.
func (app *App) Handler() http.Handler {
	h := httpapi.NewHandler(app.users, app.vault, app.config.MaxBodyBytes, app.logger)
	return httpapi.NewRouter(h, app.pipeline, httpapi.RouterConfig{
		MaxBodyBytes:   app.config.MaxBodyBytes,
		AllowedOrigins: app.config.AllowedOrigins,
	}, app.logger)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// httpErrorLog routes net/http's own error output (TLS handshakes, broken
// connections) into the structured log. nil keeps the library default.
func httpErrorLog(l logging.Logger) *log.Logger {
	sl, ok := l.(*logging.SlogLogger)
	if !ok {
		return nil
	}
	return slog.NewLogLogger(sl.Slog().Handler(), slog.LevelWarn)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          httpErrorLog(app.logger),
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCHealthAddr, app.logger, app.repos, gs.DefaultProbeInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepCounters drops idle in-memory rate-limit counters once per window.
func (app *App) sweepCounters(ctx context.Context) {
	window := app.config.LoginRateWindow
	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := app.sweep.Sweep(now, window); n > 0 {
				app.logger.Debug(ctx, "rate-limit counters swept", "removed", n)
			}
		}
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// listener fails, then releases storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.sweep != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sweepCounters(ctx)
		}()
	}

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.repos != nil {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(context.Background(), "closing storage", "error", err)
		}
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
}
