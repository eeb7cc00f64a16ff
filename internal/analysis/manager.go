package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/domaindive/internal/analyzer"
	"github.com/nao1215/domaindive/internal/dependency"
	"github.com/nao1215/domaindive/internal/model"
)

// Manager runs a fixed set of analyzers against addresses.
// It holds no per-run state, so one Manager may serve concurrent Runs as
// long as the registered dependencies tolerate it (the built-in ones do:
// every Run gets fresh instances from the registry).
type Manager struct {
	// registry creates the dependency instances of a run.
	registry *dependency.Registry

	// analyzers are run in this order; the report keeps it.
	analyzers []analyzer.Analyzer

	// required is the deduplicated union of the analyzers' dependencies,
	// collected once at construction.
	required []model.DependencyKey

	// concurrency is the maximum number of parallel fetches.
	concurrency int

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for fetch and analyzer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithConcurrency sets the maximum number of dependencies fetched in
// parallel. Default is 1: fetches run one after another.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithClock replaces the clock that stamps reports.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a Manager for analyzers, in the given order.
//
// It fails with ErrNoAnalyzers for an empty list, ErrNilAnalyzer for a nil
// entry, and dependency.ErrUnknownDependency when an analyzer declares a key
// the registry cannot create.
func New(registry *dependency.Registry, analyzers []analyzer.Analyzer, opts ...Option) (*Manager, error) {
	if len(analyzers) == 0 {
		return nil, ErrNoAnalyzers
	}

	m := &Manager{
		registry:    registry,
		analyzers:   slices.Clone(analyzers),
		concurrency: 1,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}

	required, err := m.collect()
	if err != nil {
		return nil, err
	}
	m.required = required

	return m, nil
}

// collect returns the sorted union of the analyzers' dependencies.
func (m *Manager) collect() ([]model.DependencyKey, error) {
	seen := make(map[model.DependencyKey]struct{})
	for i, a := range m.analyzers {
		if a == nil {
			return nil, fmt.Errorf("%w at position %d", ErrNilAnalyzer, i)
		}
		for _, key := range a.Dependencies() {
			if !m.registry.Has(key) {
				return nil, fmt.Errorf("analyzer %s: %w: %s", a.Name(), dependency.ErrUnknownDependency, key)
			}
			seen[key] = struct{}{}
		}
	}

	keys := make([]model.DependencyKey, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// RequiredDependencies returns the dependency keys a run fetches, sorted.
func (m *Manager) RequiredDependencies() []model.DependencyKey {
	return slices.Clone(m.required)
}

// AnalyzerNames returns the analyzer names in registration order.
func (m *Manager) AnalyzerNames() []string {
	names := make([]string, len(m.analyzers))
	for i, a := range m.analyzers {
		names[i] = a.Name()
	}
	return names
}

// Run analyzes address and returns the report.
//
// The address is passed to the dependencies as given. Run never fails:
// fetch errors, including cancellation of ctx, are recorded in the report,
// and analyzer errors become failed items.
func (m *Manager) Run(ctx context.Context, address string) *model.AnalysisReport {
	started := m.now()

	data, errs := m.fetch(ctx, address)

	items := make([]model.AnalysisResult, 0, len(m.analyzers))
	for _, a := range m.analyzers {
		items = append(items, m.analyze(a, address, data))
	}

	return model.NewAnalysisReport(address, started, items, errs)
}

// fetch fetches every required dependency once.
func (m *Manager) fetch(ctx context.Context, address string) (dependency.Data, map[model.DependencyKey]error) {
	data := make(dependency.Data, len(m.required))
	errs := make(map[model.DependencyKey]error)
	var mu sync.Mutex

	// A plain Group: one failed fetch must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(m.concurrency)

	for _, key := range m.required {
		g.Go(func() error {
			value, err := m.fetchOne(ctx, key, address)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[key] = err
				return nil
			}
			data[key] = value
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return an error

	return data, errs
}

// fetchOne creates and fetches one dependency, turning a panic into an error.
func (m *Manager) fetchOne(ctx context.Context, key model.DependencyKey, address string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: fetching %s: %v", ErrPanic, key, r)
		}
		if err != nil {
			m.logger.Warn("dependency fetch failed",
				"address", address,
				"dependency", key,
				"error", err,
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dep, err := m.registry.New(key)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("fetching dependency", "address", address, "dependency", key)
	return dep.Fetch(ctx, address)
}

// analyze runs one analyzer. A failure, returned or panicked, becomes a
// failed item carrying the error message.
func (m *Manager) analyze(a analyzer.Analyzer, address string, data dependency.Data) (result model.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: analyzer %s: %v", ErrPanic, a.Name(), r)
			m.logger.Warn("analyzer failed", "address", address, "analyzer", a.Name(), "error", err)
			result = model.NewFailedResult(a.Name(), err)
		}
	}()

	result, err := a.Analyze(address, data)
	if err != nil {
		m.logger.Warn("analyzer failed", "address", address, "analyzer", a.Name(), "error", err)
		return model.NewFailedResult(a.Name(), err)
	}

	if result.Analyzer == "" {
		result.Analyzer = a.Name()
	}
	return result
}
