// Package cluster implements the cluster inspection commands.
package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/spf13/cobra"
)

const defaultWaitTimeout = 30 * time.Second

// Command returns the cluster command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Inspect the search cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(healthCmd(), nodesCmd(), infoCmd())
	return cmd
}

func healthCmd() *cobra.Command {
	var (
		waitFor string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health [index...]",
		Short: "Show cluster health",
		Long: `Show cluster health from _cat/health. With --wait-for, block until the
cluster (or the given indices) reach the status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				if waitFor != "" {
					return waitForHealth(ctx, app, waitFor, timeout, args)
				}
				return showHealth(ctx, app)
			})
		},
	}
	cmd.Flags().StringVar(&waitFor, "wait-for", "", "Wait for status green, yellow or red")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultWaitTimeout, "Maximum time to wait")
	return cmd
}

func showHealth(ctx context.Context, app *bootstrap.App) error {
	rows, err := app.Client.CatHealth(ctx)
	if err != nil {
		return fmt.Errorf("failed to get cluster health: %w", err)
	}

	t := common.NewTable()
	t.AppendHeader(table.Row{"Cluster", "Status", "Nodes", "Data", "Shards", "Pri", "Unassigned", "Active %"})
	for _, h := range rows {
		t.AppendRow(table.Row{
			h.Cluster, h.Status, h.NodeTotal, h.NodeData,
			h.Shards, h.Primaries, h.Unassigned, h.ActiveShardsPercent,
		})
	}
	t.Render()
	return nil
}

func waitForHealth(ctx context.Context, app *bootstrap.App, status string, timeout time.Duration, indices []string) error {
	health, err := app.Client.WaitForHealth(ctx, status, timeout, indices...)
	if err != nil {
		return fmt.Errorf("failed to wait for cluster health: %w", err)
	}
	if health.TimedOut {
		return fmt.Errorf("cluster %s is %s after %s", health.ClusterName, health.Status, timeout)
	}
	fmt.Fprintf(common.Out, "cluster %s is %s\n", health.ClusterName, health.Status)
	return nil
}

func nodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List cluster nodes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				nodes, err := app.Client.CatNodes(ctx)
				if err != nil {
					return fmt.Errorf("failed to list nodes: %w", err)
				}

				t := common.NewTable()
				t.AppendHeader(table.Row{"Name", "IP", "Role", "Master", "Heap %", "RAM %", "CPU", "Load 1m"})
				for _, n := range nodes {
					t.AppendRow(table.Row{n.Name, n.IP, n.NodeRole, n.Master, n.HeapPercent, n.RAMPercent, n.CPU, n.Load1m})
				}
				t.Render()
				return nil
			})
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cluster name and version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				info, err := app.Client.Info(ctx)
				if err != nil {
					return fmt.Errorf("failed to get cluster info: %w", err)
				}
				return common.PrintJSON(info)
			})
		},
	}
}
