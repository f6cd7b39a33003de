// Package doc implements the single-document commands.
package doc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/spf13/cobra"
)

// Command returns the doc command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Read and write single documents",
		Long: `Read and write single documents. Document bodies are JSON objects given
inline or as @path to read a file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(putCmd(), getCmd(), updateCmd(), deleteCmd())
	return cmd
}

func putCmd() *cobra.Command {
	var (
		createOnly   bool
		requireIndex bool
		refresh      string
	)
	cmd := &cobra.Command{
		Use:   "put <index> <id> <json|@file>",
		Short: "Index a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := ParseDocument(args[2])
			if err != nil {
				return err
			}
			opts, err := writeOptions(refresh)
			if err != nil {
				return err
			}
			if createOnly {
				opts = append(opts, elasticsearch.WithCreateOnly())
			}
			if requireIndex {
				opts = append(opts, elasticsearch.WithRequireIndex())
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				res, putErr := app.Client.IndexDocument(ctx, args[0], args[1], document, opts...)
				if putErr != nil {
					return fmt.Errorf("failed to index document %s: %w", args[1], putErr)
				}
				return common.PrintJSON(res)
			})
		},
	}
	cmd.Flags().BoolVar(&createOnly, "create", false, "Fail with a conflict if the id already exists")
	cmd.Flags().BoolVar(&requireIndex, "require-index", false, "Fail if the index does not exist instead of auto-creating it")
	cmd.Flags().StringVar(&refresh, "refresh", "", "Refresh policy: true, wait_for or false")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <index> <id>",
		Short: "Fetch a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				res, err := app.Client.GetDocument(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to get document %s: %w", args[1], err)
				}
				return common.PrintJSON(res)
			})
		},
	}
}

func updateCmd() *cobra.Command {
	var refresh string
	cmd := &cobra.Command{
		Use:   "update <index> <id> <json|@file>",
		Short: "Merge fields into an existing document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial, err := ParseDocument(args[2])
			if err != nil {
				return err
			}
			opts, err := writeOptions(refresh)
			if err != nil {
				return err
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				res, updateErr := app.Client.UpdateDocument(ctx, args[0], args[1], partial, opts...)
				if updateErr != nil {
					return fmt.Errorf("failed to update document %s: %w", args[1], updateErr)
				}
				return common.PrintJSON(res)
			})
		},
	}
	cmd.Flags().StringVar(&refresh, "refresh", "", "Refresh policy: true, wait_for or false")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index> <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				res, err := app.Client.DeleteDocument(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to delete document %s: %w", args[1], err)
				}
				return common.PrintJSON(res)
			})
		},
	}
}

// ParseDocument decodes a JSON object given inline or as @path.
func ParseDocument(arg string) (domain.Document, error) {
	data := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var document domain.Document
	if err := dec.Decode(&document); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if document == nil {
		return nil, fmt.Errorf("parse document: expected a JSON object")
	}
	return document, nil
}

func writeOptions(refresh string) ([]elasticsearch.WriteOption, error) {
	if refresh == "" {
		return nil, nil
	}
	r, err := elasticsearch.ParseRefresh(refresh)
	if err != nil {
		return nil, err
	}
	return []elasticsearch.WriteOption{elasticsearch.WithRefresh(r)}, nil
}
