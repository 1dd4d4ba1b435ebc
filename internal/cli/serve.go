package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/config"
	"github.com/kailas-cloud/recdex/internal/db"
	dbRedis "github.com/kailas-cloud/recdex/internal/db/redis"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/metrics"
	"github.com/kailas-cloud/recdex/internal/repository/reccache"
	chiTransport "github.com/kailas-cloud/recdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
	"github.com/kailas-cloud/recdex/internal/version"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, env, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(env, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("Starting recdex API server",
				zap.String("build", version.String()),
				zap.String("env", env),
				zap.Int("http_port", cfg.HTTP.Port),
				zap.Bool("cache", cfg.Cache.Enabled),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTP.Port))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return serve(ctx, lis, cfg, logger)
		},
	}
}

// serve builds the application and runs the HTTP server on lis until ctx is done.
func serve(ctx context.Context, lis net.Listener, cfg config.Config, logger *zap.Logger) error {
	metrics.RegisterRecommendMetrics()

	ix, err := buildIndex(cfg, logger)
	if err != nil {
		_ = lis.Close()
		return err
	}

	var store db.Store
	if cfg.Cache.Enabled {
		store, err = openCache(ctx, cfg.Cache, logger)
		if err != nil {
			_ = lis.Close()
			return err
		}
		defer store.Close()
	}

	handler := newHandler(cfg, ix, store, logger)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newHandler assembles services and the router. store may be nil.
func newHandler(cfg config.Config, ix *domrec.Index, store db.Store, logger *zap.Logger) http.Handler {
	var (
		rec    recommenduc.Recommender = ix
		pinger healthuc.CachePinger
	)
	if store != nil {
		rec = reccache.New(ix, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.RecommendCacheTotal, logger)
		pinger = store
	}

	limits := recommenduc.Limits{DefaultK: cfg.Recommend.DefaultK, MaxK: cfg.Recommend.MaxK}
	recSvc := recommenduc.New(ix, rec, limits, logger)
	healthSvc := healthuc.New(ix, pinger)

	server := chiTransport.NewServer(recSvc, healthSvc, logger)
	return chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		Logger:  logger,
	})
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s cache store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	logger.Info("Connected to cache", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store, nil
}
