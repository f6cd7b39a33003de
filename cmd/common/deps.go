// Package common provides shared utilities for command implementations.
package common

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/search-probe/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
)

var (
	// ConfigPath is the --config flag shared by all commands.
	ConfigPath string
	// Debug is the --debug flag shared by all commands.
	Debug bool
)

// NewApp connects to the search service using the global flags. Callers
// must Close the returned App.
func NewApp(ctx context.Context) (*bootstrap.App, error) {
	app, err := bootstrap.Start(ctx, bootstrap.Options{ConfigPath: ConfigPath, Debug: Debug})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return app, nil
}

// Run opens an App, runs fn with the App's logger in its context and closes
// the App. When metrics are enabled the operation summary is printed after fn
// returns.
func Run(ctx context.Context, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	runErr := fn(logger.WithContext(ctx, app.Log), app)
	if app.Metrics != nil {
		if summaryErr := RenderMetrics(app.Metrics); summaryErr != nil {
			app.Log.Warn("Failed to render metrics summary", logger.Error(summaryErr))
		}
	}
	return runErr
}
