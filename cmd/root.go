// Package cmd implements the command-line interface for search-probe.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/north-cloud/search-probe/cmd/bulk"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/cluster"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/doc"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/fixture"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/index"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/raw"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/search"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/verify"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// NewRootCommand builds the probe command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "probe",
		Short: "Exercise and verify an Elasticsearch cluster",
		Long: `probe is a thin client for an Elasticsearch cluster: index administration,
document reads and writes, bulk loading, search, and end-to-end verification
scenarios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&common.ConfigPath,
		"config",
		"",
		"config file (default is $CONFIG_PATH or ./config.yml)",
	)
	rootCmd.PersistentFlags().BoolVar(&common.Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "probe version %s\n", Version)
		},
	})

	rootCmd.AddCommand(
		cluster.Command(),
		index.Command(),
		doc.Command(),
		bulk.Command(),
		search.Command(),
		fixture.Command(),
		verify.Command(),
		raw.Command(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
