// Package scenario runs end-to-end verification procedures against a live
// search service. Each scenario is an ordered list of steps sharing an Env;
// indices created through the Env are always deleted afterwards.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
)

var (
	// ErrSkipped marks a step that could not run, such as a fixture that
	// cannot be downloaded. Remaining steps are skipped and the scenario
	// does not fail.
	ErrSkipped = errors.New("skipped")
	// ErrUnknownScenario is returned for a name with no registered scenario.
	ErrUnknownScenario = errors.New("unknown scenario")
)

// Step is one named action of a scenario.
type Step struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// Scenario is an ordered verification procedure.
type Scenario struct {
	Name        string
	Description string
	Steps       []Step
}

// Status is the outcome of a step.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records one executed (or skipped) step.
type StepResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Err      error
	Notes    []string
}

// Report is the outcome of one scenario run.
type Report struct {
	Scenario string
	Steps    []StepResult
	Duration time.Duration
	// Teardown aggregates every cleanup failure.
	Teardown error
}

// Passed reports whether no step failed and teardown succeeded.
func (r *Report) Passed() bool {
	if r.Teardown != nil {
		return false
	}
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Err returns the first step failure or the teardown error.
func (r *Report) Err() error {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return fmt.Errorf("%s/%s: %w", r.Scenario, s.Name, s.Err)
		}
	}
	if r.Teardown != nil {
		return fmt.Errorf("%s teardown: %w", r.Scenario, r.Teardown)
	}
	return nil
}

// Options configures a Runner.
type Options struct {
	// Visibility governs polling until writes become searchable.
	Visibility retry.Config
	// AccountsURL and AccountsFile locate the bank accounts fixture; the
	// file wins when both are set.
	AccountsURL  string
	AccountsFile string
	// FixtureTimeout bounds the fixture download.
	FixtureTimeout time.Duration
}

// Runner executes scenarios against one client.
type Runner struct {
	client *elasticsearch.Client
	loader *fixtures.Loader
	log    logger.Logger
	opts   Options
}

// NewRunner creates a Runner.
func NewRunner(client *elasticsearch.Client, log logger.Logger, opts Options) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Visibility.MaxAttempts == 0 {
		opts.Visibility = retry.Config{
			MaxAttempts:  10,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		}
	}
	return &Runner{
		client: client,
		loader: fixtures.NewLoader(opts.FixtureTimeout, log),
		log:    log.With(logger.String("component", "scenario")),
		opts:   opts,
	}
}

// Run executes sc. Steps run in order and stop at the first failure or
// skip; teardown always runs.
func (r *Runner) Run(ctx context.Context, sc Scenario) *Report {
	env := &Env{
		Client: r.client,
		Loader: r.loader,
		Log:    r.log.With(logger.String("scenario", sc.Name)),
		opts:   r.opts,
		runID:  uuid.NewString()[:8],
		names:  map[string]string{},
	}

	// Steps and the helpers they call log through the scenario logger.
	ctx = logger.WithContext(ctx, env.Log)

	report := &Report{Scenario: sc.Name, Steps: make([]StepResult, 0, len(sc.Steps))}
	start := time.Now()
	halted := false

	for _, step := range sc.Steps {
		result := StepResult{Name: step.Name, Status: StatusSkipped}
		if halted || ctx.Err() != nil {
			report.Steps = append(report.Steps, result)
			continue
		}

		env.notes = nil
		stepStart := time.Now()
		err := step.Run(ctx, env)
		result.Duration = time.Since(stepStart)
		result.Notes = env.notes

		switch {
		case err == nil:
			result.Status = StatusPassed
		case errors.Is(err, ErrSkipped):
			result.Err = err
			halted = true
		default:
			result.Status = StatusFailed
			result.Err = err
			halted = true
		}

		env.Log.Debug("Scenario step finished",
			logger.String("step", step.Name),
			logger.String("status", string(result.Status)),
			logger.Duration("duration", result.Duration),
		)
		report.Steps = append(report.Steps, result)
	}

	report.Teardown = env.teardown(context.WithoutCancel(ctx))
	report.Duration = time.Since(start)

	if report.Passed() {
		env.Log.Info("Scenario passed", logger.Duration("duration", report.Duration))
	} else {
		env.Log.Error("Scenario failed", logger.Error(report.Err()))
	}
	return report
}

// RunNamed runs the named scenarios in order, or every scenario when names
// is empty.
func (r *Runner) RunNamed(ctx context.Context, names ...string) ([]*Report, error) {
	scenarios, err := Select(names...)
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0, len(scenarios))
	for _, sc := range scenarios {
		reports = append(reports, r.Run(ctx, sc))
	}
	return reports, nil
}

// Env is the state shared by the steps of one run.
type Env struct {
	Client *elasticsearch.Client
	Loader *fixtures.Loader
	Log    logger.Logger

	opts  Options
	runID string
	names map[string]string
	// created lists indices to delete on teardown, in creation order.
	created []string
	notes   []string

	accounts int64
}

// Index returns the run-unique index name for base. The same base always
// yields the same name within a run, and the index is deleted on teardown.
func (e *Env) Index(base string) string {
	if name, ok := e.names[base]; ok {
		return name
	}
	name := fmt.Sprintf("probe-%s-%s", base, e.runID)
	e.names[base] = name
	e.created = append(e.created, name)
	return name
}

// Notef attaches an informational line to the current step.
func (e *Env) Notef(format string, args ...any) {
	e.notes = append(e.notes, fmt.Sprintf(format, args...))
}

// WaitForCount waits until count documents of index are searchable.
func (e *Env) WaitForCount(ctx context.Context, index string, count int64) error {
	return e.Client.WaitForCount(ctx, index, nil, count, e.opts.Visibility)
}

func (e *Env) teardown(ctx context.Context) error {
	var errs *multierror.Error
	for i := len(e.created) - 1; i >= 0; i-- {
		name := e.created[i]
		if _, err := e.Client.DeleteIndex(ctx, name); err != nil && !elasticsearch.IsNotFound(err) {
			errs = multierror.Append(errs, fmt.Errorf("delete index %s: %w", name, err))
		}
	}
	return errs.ErrorOrNil()
}

var registry = map[string]func() Scenario{}

// register adds a scenario constructor under its name.
func register(build func() Scenario) {
	registry[build().Name] = build
}

// Names returns the registered scenario names in run order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.SliceStable(names, func(i, j int) bool {
		return order(names[i]) < order(names[j])
	})
	return names
}

var runOrder = []string{"cluster", "indices", "documents", "search", "geo", "specialized"}

func order(name string) int {
	for i, n := range runOrder {
		if n == name {
			return i
		}
	}
	return len(runOrder)
}

// Select returns fresh scenarios for names, or all of them when names is empty.
func Select(names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		names = Names()
	}
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		build, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
		}
		out = append(out, build())
	}
	return out, nil
}
