package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/config"
	"github.com/biamino/biamino-backend/internal/bootstrap"
	"github.com/biamino/biamino-backend/internal/transfer"
	"github.com/biamino/biamino-backend/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := bootstrap.NewLogger("info", "production")
		boot.Fatal().Err(err).Msg("config")
	}

	log := bootstrap.NewLogger(cfg.App.LogLevel, cfg.App.Environment).
		With().Str("service", cfg.App.ServiceName).Logger()
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(log.WithContext(ctx), cfg, log, nil); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

// run serves until ctx is cancelled, then shuts down gracefully. When ready
// is non-nil it receives the bound address once the listener is open.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, ready chan<- string) error {
	stores, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	sessions, err := bootstrap.NewSessionManager(cfg, stores.Store, stores.Redis)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	if cfg.Session.SeedUsers {
		n, err := users.EnsureUsers(ctx, stores.Store, sessions.Credentials().All())
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		log.Info().Int("created", n).Msg("users seeded")
	}

	exports := transfer.NewService(stores.Store)
	if cfg.Export.Cron != "" {
		sched, err := transfer.NewScheduler(exports, cfg.Export.Dir, cfg.Export.Cron, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
		Backend:     stores.Backend,
		Store:       stores.Store,
		Sessions:    sessions,
		Transfer:    exports,
		Logger:      log,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})

	ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{Handler: r}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("backend", stores.Backend).Msg("listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
