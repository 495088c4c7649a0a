package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/swecha-admin/internal/config"
	"github.com/Sternrassler/swecha-admin/pkg/cache"
	"github.com/Sternrassler/swecha-admin/pkg/client"
	"github.com/Sternrassler/swecha-admin/pkg/dashboard"
	"github.com/Sternrassler/swecha-admin/pkg/logging"
	"github.com/Sternrassler/swecha-admin/pkg/session"
)

var (
	configFlag string
	cfg        *config.Config
	rootCmd    = &cobra.Command{
		Use:           "admin-dashboard",
		Short:         "Admin dashboard back end for the corpus backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configFlag != "" {
				cfg, err = config.LoadFile(configFlag)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging())
			return nil
		},
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config.yaml (default: $CONFIG_PATH or ./config.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API for one operator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	rootCmd.AddCommand(serveCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print user statistics and top contributors (uses ADMIN_TOKEN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			progress, _ := cmd.Flags().GetBool("progress")
			return runStats(cmd.Context(), cfg, top, progress, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	statsCmd.Flags().IntP("top", "n", dashboard.DefaultTopN, "Number of top contributors to list")
	statsCmd.Flags().Bool("progress", true, "Report enrichment progress on stderr")
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newStore builds the configured cache store. The returned close func is never nil.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if !cfg.UsesRedis() {
		return cache.NewMemoryStore(), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
		DB:   cfg.Cache.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
	}
	log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Connected to Redis")
	return cache.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
}

// newSession wires client, store and session from the configuration.
func newSession(ctx context.Context, cfg *config.Config, scfg session.Config) (*session.Session, func(), error) {
	clientCfg := client.DefaultConfig(cfg.Backend.BaseURL)
	clientCfg.Timeout = cfg.Backend.Timeout
	clientCfg.UserAgent = cfg.Backend.UserAgent

	apiClient, err := client.New(clientCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create api client: %w", err)
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		apiClient.Close()
		return nil, nil, err
	}

	cleanup := func() {
		closeStore()
		apiClient.Close()
	}
	return session.New(apiClient, store, scfg), cleanup, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	s, cleanup, err := newSession(ctx, cfg, cfg.Session())
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(dashboard.New(s)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("backend", cfg.Backend.BaseURL).
			Str("cache_store", cfg.Cache.Store).
			Msg("Starting admin dashboard server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Logout(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Clearing session cache failed")
	}
	return srv.Shutdown(shutdownCtx)
}
