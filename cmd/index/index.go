// Package index implements the index administration commands.
package index

import (
	"context"
	"fmt"
	"os"

	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Command returns the index command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage indices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(createCmd(), deleteCmd(), existsCmd())
	return cmd
}

func createCmd() *cobra.Command {
	var (
		shards      int
		replicas    int
		mappingFile string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an index",
		Long: `Create an index with the given shard and replica counts. --mapping reads a
YAML or JSON file mapping field names to types, for example:

  title: text
  price: integer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CreateIndexRequest{Shards: shards, Replicas: replicas}
			if mappingFile != "" {
				mapping, err := readMapping(mappingFile)
				if err != nil {
					return err
				}
				req.Mapping = mapping
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				ack, err := app.Client.CreateIndex(ctx, args[0], req)
				if err != nil {
					return fmt.Errorf("failed to create index %s: %w", args[0], err)
				}
				return common.PrintJSON(ack)
			})
		},
	}
	cmd.Flags().IntVar(&shards, "shards", 0, "Number of primary shards (0 uses the service default)")
	cmd.Flags().IntVar(&replicas, "replicas", 0, "Number of replicas")
	cmd.Flags().StringVar(&mappingFile, "mapping", "", "Field mapping file (YAML or JSON)")
	return cmd
}

// readMapping parses a field-to-type file. YAML is a superset of JSON, so
// both formats are accepted.
func readMapping(path string) (*domain.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var fields map[string]domain.FieldType
	if err = yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("mapping %s defines no fields", path)
	}
	return domain.NewMapping(fields), nil
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				ack, err := app.Client.DeleteIndex(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete index %s: %w", args[0], err)
				}
				return common.PrintJSON(ack)
			})
		},
	}
}

func existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Report whether an index exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				exists, err := app.Client.IndexExists(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to check index %s: %w", args[0], err)
				}
				fmt.Fprintf(common.Out, "%s exists: %t\n", args[0], exists)
				return nil
			})
		},
	}
}
