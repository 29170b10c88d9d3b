package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-description-generator/internal/bootstrap"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
	"github.com/fairyhunter13/product-description-generator/internal/queue"
	"github.com/fairyhunter13/product-description-generator/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Regenerate one page of product descriptions and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = obs.Logger.Sync() }()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		mgr := queue.NewManager(cfg, queue.New(cfg.RunQueueBuffer, cfg.QueueHighWatermark), store.New(1), bootstrap.NewPipeline(cfg))
		runID, res, err := mgr.RunNow(ctx, model.TriggerCLI)
		if err != nil {
			obs.Logger.Errorw("run_failed", "run_id", runID, "error", err)
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}
