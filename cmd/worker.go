package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeup/novabook/internal/loan"
)

var workerOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs",
}

var overdueWorkerCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Scan open loans for overdue ones on the configured cron schedule",
	RunE:  runOverdueWorker,
}

func init() {
	overdueWorkerCmd.Flags().BoolVar(&workerOnce, "once", false, "run a single scan and exit")
	workerCmd.AddCommand(overdueWorkerCmd)
}

func runOverdueWorker(cmd *cobra.Command, _ []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	scheduler := loan.NewOverdueScheduler(deps.Loans, deps.Config.Library.OverdueScanSchedule, deps.Logger.With("component", "scheduler"))
	if workerOnce {
		scheduler.RunOnce(ctx)
		return nil
	}

	deps.Logger.Info("overdue worker started", "schedule", deps.Config.Library.OverdueScanSchedule)
	if err := scheduler.Run(ctx); err != nil {
		return err
	}
	deps.Logger.Info("overdue worker stopped")
	return nil
}
