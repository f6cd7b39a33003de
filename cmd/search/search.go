// Package search implements the search command.
package search

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/spf13/cobra"
)

// DefaultSourceWidth bounds the source column of the hits table.
const DefaultSourceWidth = 100

// Command returns the search command for use in the root command.
func Command() *cobra.Command {
	var (
		query    string
		sort     []string
		size     int
		bodyFile string
	)
	cmd := &cobra.Command{
		Use:   "search <index>",
		Short: "Search an index",
		Long: `Search an index with a query string (--q, --sort, --size) or a full
request body read from a JSON file (--body).

Examples:
  # Every account, sorted by account number
  probe search bank --q '*' --sort account_number:asc

  # A query DSL body
  probe search bank --body query.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := args[0]
			if bodyFile != "" && query != "" {
				return fmt.Errorf("--body and --q are mutually exclusive")
			}

			var body []byte
			if bodyFile != "" {
				var err error
				if body, err = os.ReadFile(bodyFile); err != nil {
					return fmt.Errorf("read body: %w", err)
				}
			}

			uri := elasticsearch.URISearch{Q: query, Sort: sort}
			if cmd.Flags().Changed("size") {
				uri.Size = domain.Ptr(size)
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				var (
					res *domain.SearchResult
					err error
				)
				if body != nil {
					res, err = searchBody(ctx, app.Client, index, body)
				} else {
					res, err = app.Client.SearchURI(ctx, index, uri)
				}
				if err != nil {
					return fmt.Errorf("failed to search %s: %w", index, err)
				}
				return render(res)
			})
		},
	}
	cmd.Flags().StringVar(&query, "q", "", "Query string")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "Sort as field:order, repeatable")
	cmd.Flags().IntVar(&size, "size", 0, "Number of hits to return")
	cmd.Flags().StringVar(&bodyFile, "body", "", "Search request body file (JSON query DSL)")
	return cmd
}

// searchBody sends a hand-written request body through the raw client.
func searchBody(ctx context.Context, client *elasticsearch.Client, index string, body []byte) (*domain.SearchResult, error) {
	res, err := client.Raw(ctx, elasticsearch.RawRequest{
		Method: http.MethodPost,
		Path:   "/" + index + "/_search",
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	if err = res.Err("search"); err != nil {
		return nil, err
	}
	var out domain.SearchResult
	if err = res.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func render(res *domain.SearchResult) error {
	fmt.Fprintf(common.Out, "%d hit(s) (%s) in %dms\n", res.Total(), res.Hits.Total.Relation, res.Took)

	if len(res.Hits.Hits) > 0 {
		t := common.NewTable()
		t.AppendHeader(table.Row{"Index", "ID", "Score", "Source"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, WidthMax: DefaultSourceWidth, WidthMaxEnforcer: text.Trim},
		})
		for _, hit := range res.Hits.Hits {
			score := "-"
			if hit.Score != nil {
				score = strconv.FormatFloat(*hit.Score, 'f', 3, 64)
			}
			t.AppendRow(table.Row{hit.Index, hit.ID, score, common.CompactJSON(hit.Source)})
		}
		t.Render()
	}

	for name := range res.Aggregations {
		terms, err := res.Terms(name)
		if err != nil {
			return err
		}
		renderTerms(name, terms)
	}
	return nil
}

func renderTerms(name string, terms *domain.TermsResult) {
	t := common.NewTable()
	t.SetTitle(name)
	t.AppendHeader(table.Row{"Key", "Doc count"})
	for _, b := range terms.Buckets {
		t.AppendRow(table.Row{b.Key, b.DocCount})
	}
	t.AppendFooter(table.Row{"other", terms.SumOtherDocCount})
	t.Render()
	fmt.Fprintf(common.Out, "doc_count_error_upper_bound: %d\n", terms.DocCountErrorUpperBound)
}
