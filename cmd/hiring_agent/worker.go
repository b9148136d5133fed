package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run queued candidate evaluations",
	Long:  `Consume evaluation jobs from the AMQP queue and run the evaluation pipeline for each. Requires AMQP_URL and a shared store backend.`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if !cfg.Queue.Enabled() {
		return fmt.Errorf("worker requires a queue: set AMQP_URL or queue.url")
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info().Str("queue", cfg.Queue.Queue).Str("store", cfg.Store.Backend).Msg("worker starting")
	return a.broker.Consume(ctx, a.evaluation.HandleJob)
}
