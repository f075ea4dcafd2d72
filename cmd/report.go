package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeup/novabook/internal/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:       "report <books|partners|loans|overdue>",
	Short:     "Export a CSV report",
	Long:      `Write a CSV report to a timestamped file under --out (reports.export_path by default), or to stdout with --out -.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: reportKinds(),
	RunE:      runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", `output directory, or "-" for stdout`)
}

func reportKinds() []string {
	kinds := make([]string, len(report.Kinds))
	for i, k := range report.Kinds {
		kinds[i] = string(k)
	}
	return kinds
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kind, appErr := report.ParseKind(args[0])
	if appErr != nil {
		return appErr
	}

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	if reportOut == "-" {
		return deps.Reports.Export(ctx, kind, cmd.OutOrStdout())
	}

	dir := reportOut
	if dir == "" {
		dir = deps.Config.Reports.ExportPath
	}
	path, err := deps.Reports.ExportToFile(ctx, kind, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
	return nil
}
