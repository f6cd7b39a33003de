// Package bulk implements the bulk command.
package bulk

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
	"github.com/spf13/cobra"
)

// Command returns the bulk command for use in the root command.
func Command() *cobra.Command {
	var (
		refresh      string
		requireIndex bool
	)
	cmd := &cobra.Command{
		Use:   "bulk <index> <file.ndjson>",
		Short: "Submit a newline-delimited bulk file in one request",
		Long: `Submit a newline-delimited bulk file as a single request. Entries are
applied independently: a failed entry does not undo the others, and every
failure is listed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := readBulkFile(args[1])
			if err != nil {
				return err
			}
			r, err := elasticsearch.ParseRefresh(refresh)
			if err != nil {
				return err
			}

			opts := []elasticsearch.WriteOption{elasticsearch.WithRefresh(r)}
			if requireIndex {
				opts = append(opts, elasticsearch.WithRequireIndex())
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				res, bulkErr := app.Client.Bulk(ctx, args[0], ops, opts...)
				if bulkErr != nil {
					return fmt.Errorf("failed to submit bulk request: %w", bulkErr)
				}
				return renderResult(res)
			})
		},
	}
	cmd.Flags().StringVar(&refresh, "refresh", "", "Refresh policy: true, wait_for or false")
	cmd.Flags().BoolVar(&requireIndex, "require-index", false, "Fail if the index does not exist instead of auto-creating it")
	return cmd
}

func readBulkFile(path string) ([]domain.BulkOperation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bulk file: %w", err)
	}
	defer f.Close()

	ops, err := fixtures.ParseBulk(f)
	if err != nil {
		return nil, fmt.Errorf("parse bulk file %s: %w", path, err)
	}
	return ops, nil
}

func renderResult(res *domain.BulkResult) error {
	failed := res.Failed()
	fmt.Fprintf(common.Out, "%d item(s) in %dms, %d failed\n", len(res.Items), res.Took, len(failed))
	if len(failed) == 0 {
		return nil
	}

	t := common.NewTable()
	t.AppendHeader(table.Row{"Action", "Index", "ID", "Status", "Error"})
	for _, item := range failed {
		reason := ""
		if item.Error != nil {
			reason = item.Error.Type + ": " + item.Error.Reason
		}
		t.AppendRow(table.Row{item.Kind, item.Index, item.ID, item.Status, reason})
	}
	t.Render()
	return fmt.Errorf("%d of %d bulk item(s) failed", len(failed), len(res.Items))
}
