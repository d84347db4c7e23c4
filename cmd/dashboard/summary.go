package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dreamware/penguins/internal/api"
	"github.com/dreamware/penguins/internal/filter"
	"github.com/dreamware/penguins/internal/termview"
)

func runSummary(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	rows, _ := flags.GetInt("rows")
	serverURL, _ := flags.GetString("server")
	if src, _ := flags.GetString("dataset"); src != "" {
		cfg.Dataset.Source = src
	}

	var req api.CreateSessionRequest
	if flags.Changed("species") {
		species, _ := flags.GetStringSlice("species")
		req.Species = &species
	}
	if flags.Changed("max-mass") {
		mass, _ := flags.GetFloat64("max-mass")
		req.MaxMass = &mass
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	var (
		summary api.Summary
		table   api.Table
		err     error
	)
	if serverURL != "" {
		summary, table, err = remoteSummary(ctx, api.NewClient(serverURL), req)
	} else {
		summary, table, err = localSummary(ctx, req)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), termview.Dashboard(termview.DefaultStyles(), summary, table, rows))
	return err
}

// localSummary loads the dataset and filters it with a private engine.
func localSummary(ctx context.Context, req api.CreateSessionRequest) (api.Summary, api.Table, error) {
	ds, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		return api.Summary{}, api.Table{}, err
	}

	species := cfg.Controls.Species
	if len(species) == 0 {
		species = ds.Species()
	}
	params := req.Resolve(filter.NewParams(species, cfg.Controls.MassDefault))

	engine := filter.NewEngine(ds, params)
	logger.Debug("local summary", zap.String("params", params.Key()), zap.Int("matches", engine.Count()))
	return api.SummaryOf(engine), api.TableOf(engine), nil
}

// remoteSummary reads through a short-lived session on a running server.
func remoteSummary(ctx context.Context, c *api.Client, req api.CreateSessionRequest) (api.Summary, api.Table, error) {
	sess, err := c.CreateSession(ctx, req)
	if err != nil {
		return api.Summary{}, api.Table{}, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := c.CloseSession(context.Background(), sess.ID); err != nil {
			logger.Warn("close session", zap.String("session", sess.ID), zap.Error(err))
		}
	}()

	summary, err := c.Summary(ctx, sess.ID)
	if err != nil {
		return api.Summary{}, api.Table{}, fmt.Errorf("read summary: %w", err)
	}
	table, err := c.Table(ctx, sess.ID)
	if err != nil {
		return api.Summary{}, api.Table{}, fmt.Errorf("read table: %w", err)
	}
	return summary, table, nil
}
