package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"purchase-approval/internal/config"
	"purchase-approval/internal/infrastructure/cache"
	"purchase-approval/internal/infrastructure/db"
	"purchase-approval/internal/infrastructure/logging"
	"purchase-approval/internal/infrastructure/tracing"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.AppPort = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides APP_PORT)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the workflow tables and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.AppEnv)
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(gdb)
			if err := db.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Str("driver", cfg.DBDriver).Msg("schema migrated")
			return nil
		},
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), db.LogLevel(cfg.DBLogLevel))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	return gdb, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.AppEnv)

	gdb, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(gdb)
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	resolver, err := resolverFor(cfg)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisTimeout()); err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("REDIS_ADDR not set; Idempotency-Key headers are ignored")
	}

	if cfg.TracingStdout {
		shutdown, err := tracing.Setup(os.Stdout)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer flushTraces(shutdown, log)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := newServer(deps{
		cfg:      cfg,
		log:      log,
		db:       gdb,
		rdb:      rdb,
		reg:      reg,
		resolver: resolver,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Info().Str("addr", addr).Str("driver", cfg.DBDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func flushTraces(shutdown func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("trace flush failed")
	}
}
