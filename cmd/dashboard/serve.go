package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dreamware/penguins/internal/config"
	"github.com/dreamware/penguins/internal/dataset"
	"github.com/dreamware/penguins/internal/logging"
	"github.com/dreamware/penguins/internal/metrics"
	"github.com/dreamware/penguins/internal/session"
)

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if src, _ := cmd.Flags().GetString("dataset"); src != "" {
		cfg.Dataset.Source = src
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	srv := newServer(cfg, ds, m, logger)

	reaper := session.NewReaper(srv.registry, cfg.GetSessionTTL(), cfg.GetReapInterval(), logging.Component(logger, "reaper"))
	reaper.SetOnExpire(m.SessionExpired)
	reaper.Start(ctx)
	defer reaper.Stop()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: cfg.GetReadHeaderTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("dashboard stopped", zap.Int("open_sessions", srv.registry.Len()))
	return nil
}

// loadDataset reads the configured source once. Errors are fatal to the command.
func loadDataset(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dataset.Dataset, error) {
	opts := []dataset.Option{
		dataset.WithLogger(logging.Component(logger, "dataset")),
		dataset.WithS3Config(dataset.S3Config{
			Region:    cfg.Dataset.S3.Region,
			Endpoint:  cfg.Dataset.S3.Endpoint,
			PathStyle: cfg.Dataset.S3.PathStyle,
		}),
	}
	if cfg.Dataset.Table != "" {
		opts = append(opts, dataset.WithTable(cfg.Dataset.Table))
	}
	return dataset.Load(ctx, cfg.Dataset.Source, opts...)
}
