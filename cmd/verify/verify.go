// Package verify implements the end-to-end verification command.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/jonesrussell/north-cloud/search-probe/cmd/common"
	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/scenario"
	"github.com/spf13/cobra"
)

// ErrVerificationFailed is returned when any scenario fails.
var ErrVerificationFailed = errors.New("verification failed")

// Command returns the verify command for use in the root command.
func Command() *cobra.Command {
	var (
		list         bool
		accountsFile string
		accountsURL  string
	)
	cmd := &cobra.Command{
		Use:   "verify [scenario...]",
		Short: "Run end-to-end scenarios against the cluster",
		Long: fmt.Sprintf(`Run end-to-end scenarios against the cluster. Every scenario works on
its own uniquely named indices and deletes them afterwards.

Scenarios, in run order: %s`, strings.Join(scenario.Names(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listScenarios(args)
			}
			if _, err := scenario.Select(args...); err != nil {
				return err
			}

			return common.Run(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
				opts := bootstrap.ScenarioOptions(app.Config)
				if accountsFile != "" {
					opts.AccountsFile = accountsFile
				}
				if accountsURL != "" {
					opts.AccountsURL = accountsURL
				}

				runner := scenario.NewRunner(app.Client, app.Log, opts)
				reports, err := runner.RunNamed(ctx, args...)
				if err != nil {
					return err
				}
				return Render(reports)
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List scenarios and their steps without running them")
	cmd.Flags().StringVar(&accountsFile, "accounts-file", "", "Read the bank accounts fixture from this file")
	cmd.Flags().StringVar(&accountsURL, "accounts-url", "", "Download the bank accounts fixture from this URL")
	return cmd
}

func listScenarios(names []string) error {
	scenarios, err := scenario.Select(names...)
	if err != nil {
		return err
	}
	t := common.NewTable()
	t.AppendHeader(table.Row{"Scenario", "Description", "Steps"})
	for _, sc := range scenarios {
		t.AppendRow(table.Row{sc.Name, sc.Description, len(sc.Steps)})
	}
	t.Render()
	return nil
}

// Render prints one row per step and returns ErrVerificationFailed when
// any scenario did not pass.
func Render(reports []*scenario.Report) error {
	t := common.NewTable()
	t.AppendHeader(table.Row{"Scenario", "Step", "Status", "Duration", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	var failed []string
	for _, r := range reports {
		for _, s := range r.Steps {
			t.AppendRow(table.Row{r.Scenario, s.Name, colorize(s.Status), s.Duration.Round(time.Millisecond), detail(s)})
		}
		if r.Teardown != nil {
			t.AppendRow(table.Row{r.Scenario, "teardown", colorize(scenario.StatusFailed), "", r.Teardown.Error()})
		}
		t.AppendSeparator()
		if !r.Passed() {
			failed = append(failed, r.Scenario)
		}
	}
	t.Render()

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(failed, ", "))
	}
	return nil
}

func detail(s scenario.StepResult) string {
	parts := append([]string(nil), s.Notes...)
	if s.Err != nil {
		parts = append(parts, s.Err.Error())
	}
	return strings.Join(parts, "; ")
}

func colorize(s scenario.Status) string {
	switch s {
	case scenario.StatusPassed:
		return text.FgGreen.Sprint(s)
	case scenario.StatusFailed:
		return text.FgRed.Sprint(s)
	default:
		return text.FgYellow.Sprint(s)
	}
}
