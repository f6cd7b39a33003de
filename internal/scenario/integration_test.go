//go:build integration

package scenario_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/config"
	"github.com/jonesrussell/north-cloud/search-probe/internal/scenario"
	"github.com/jonesrussell/north-cloud/search-probe/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Integration(t *testing.T) {
	client, _ := testhelpers.NewClient(t)

	runner := scenario.NewRunner(client, testhelpers.NewTestLogger(), scenario.Options{
		AccountsURL:    config.DefaultAccountsURL,
		AccountsFile:   os.Getenv("SEARCH_PROBE_ACCOUNTS_FILE"),
		FixtureTimeout: 30 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reports, err := runner.RunNamed(ctx)
	require.NoError(t, err)
	require.Len(t, reports, len(scenario.Names()))

	for _, report := range reports {
		for _, step := range report.Steps {
			if step.Status == scenario.StatusSkipped && step.Err != nil {
				t.Logf("%s/%s skipped: %v", report.Scenario, step.Name, step.Err)
			}
		}
		assert.NoError(t, report.Err(), report.Scenario)
	}
}
