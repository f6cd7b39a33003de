// Package fixture implements the fixture loading command.
package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/spf13/cobra"
)

// Dataset is a named fixture with its index definition.
type Dataset struct {
	Index func() domain.CreateIndexRequest
	// Load returns the documents. It may download them.
	Load func(ctx context.Context, loader *fixtures.Loader, file, url string) ([]domain.BulkOperation, error)
}

// Datasets are the fixtures known by name.
var Datasets = map[string]Dataset{
	"accounts": {
		Index: fixtures.BankIndex,
		Load: func(ctx context.Context, loader *fixtures.Loader, file, url string) ([]domain.BulkOperation, error) {
			return loader.Load(ctx, file, url)
		},
	},
	"books": {
		Index: fixtures.LibraryIndex,
		Load: func(context.Context, *fixtures.Loader, string, string) ([]domain.BulkOperation, error) {
			return fixtures.BookOperations(), nil
		},
	},
	"geo": {
		Index: fixtures.GeoIndex,
		Load: func(context.Context, *fixtures.Loader, string, string) ([]domain.BulkOperation, error) {
			return fixtures.GeoDocuments(), nil
		},
	},
}

func datasetNames() []string {
	names := make([]string, 0, len(Datasets))
	for name := range Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Command returns the fixture command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Load sample datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(loadCmd())
	return cmd
}

func loadCmd() *cobra.Command {
	var (
		dataset     string
		url         string
		file        string
		createIndex bool
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "load <index>",
		Short: "Bulk-load a dataset into an index",
		Long: fmt.Sprintf(`Bulk-load a dataset into an index. Known datasets: %s.
The accounts dataset is read from --file, or downloaded from --url (default
from the fixtures section of the config).`, strings.Join(datasetNames(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, ok := Datasets[dataset]
			if !ok {
				return fmt.Errorf("unknown dataset %q (known: %s)", dataset, strings.Join(datasetNames(), ", "))
			}
			index := args[0]

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				if url == "" {
					url = app.Config.Fixtures.AccountsURL
				}
				if file == "" {
					file = app.Config.Fixtures.AccountsFile
				}

				if createIndex {
					created, err := app.Client.EnsureIndex(ctx, index, ds.Index())
					if err != nil {
						return fmt.Errorf("failed to create index %s: %w", index, err)
					}
					app.Log.Debug("Fixture index ready", logger.String("index", index), logger.Bool("created", created))
					if created {
						fmt.Fprintf(common.Out, "created index %s\n", index)
					}
				}

				loader := fixtures.NewLoader(app.Config.Fixtures.Timeout, app.Log)
				ops, err := ds.Load(ctx, loader, file, url)
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", dataset, err)
				}

				stats, err := fixtures.Import(ctx, app.Client, index, ops, fixtures.ImportOptions{
					Workers: workers,
					Refresh: elasticsearch.RefreshWaitFor,
				})
				renderStats(stats)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "accounts", "Dataset to load")
	cmd.Flags().StringVar(&url, "url", "", "Download the accounts dataset from this URL")
	cmd.Flags().StringVar(&file, "file", "", "Read the accounts dataset from this NDJSON file")
	cmd.Flags().BoolVar(&createIndex, "create-index", true, "Create the index with the dataset mapping when absent")
	cmd.Flags().IntVar(&workers, "workers", 0, "Bulk workers (0 uses the number of CPUs)")
	return cmd
}

func renderStats(stats *fixtures.ImportStats) {
	if stats == nil {
		return
	}
	t := common.NewTable()
	t.AppendHeader(table.Row{"Added", "Indexed", "Created", "Updated", "Deleted", "Failed", "Requests", "Duration"})
	t.AppendRow(table.Row{
		stats.Added, stats.Indexed, stats.Created, stats.Updated,
		stats.Deleted, stats.Failed, stats.Requests, stats.Duration.Round(time.Millisecond),
	})
	t.Render()
}
