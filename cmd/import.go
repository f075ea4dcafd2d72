package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data from CSV files",
}

var importBooksCmd = &cobra.Command{
	Use:   "books <file.csv>",
	Short: "Import books from a CSV file with title,author,isbn,publication_year columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportBooks,
}

func init() {
	importCmd.AddCommand(importBooksCmd)
}

func runImportBooks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := deps.Reports.ImportBooks(ctx, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Summary())
	for _, msg := range result.Errors {
		fmt.Fprintf(out, "  %s\n", msg)
	}
	return nil
}
