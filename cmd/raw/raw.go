// Package raw implements a low-level request command.
package raw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/spf13/cobra"
)

// Command returns the raw command for use in the root command.
func Command() *cobra.Command {
	var (
		bodyFile string
		params   []string
	)
	cmd := &cobra.Command{
		Use:   "raw <method> <path>",
		Short: "Send an arbitrary request to the search service",
		Long: `Send an arbitrary request with the configured authentication and print
the status and body. Error statuses are printed, not treated as failures.

Example:
  probe raw GET /_cat/indices --param v=true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := elasticsearch.RawRequest{Method: args[0], Path: args[1], Params: url.Values{}}
			for _, p := range params {
				key, value, _ := strings.Cut(p, "=")
				req.Params.Add(key, value)
			}
			if bodyFile != "" {
				body, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("read body: %w", err)
				}
				req.Body = body
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				res, err := app.Client.Raw(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(common.Out, "%d\n", res.StatusCode)
				printBody(res.Body)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bodyFile, "body", "", "Request body file")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Query parameter as key=value, repeatable")
	return cmd
}

// printBody indents JSON bodies and prints anything else verbatim.
func printBody(body []byte) {
	var buf bytes.Buffer
	if json.Indent(&buf, body, "", "  ") == nil {
		buf.WriteByte('\n')
		_, _ = common.Out.Write(buf.Bytes())
		return
	}
	_, _ = common.Out.Write(body)
}
