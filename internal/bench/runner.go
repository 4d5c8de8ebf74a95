// Package bench times benchmark queries over a dataset and records the runs.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hepframe/hepframe/internal/core/aggregation"
	"github.com/hepframe/hepframe/internal/core/column"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/core/pipeline"
	"github.com/hepframe/hepframe/internal/core/storage"
	"github.com/hepframe/hepframe/internal/dataset"
	"github.com/hepframe/hepframe/internal/metrics"
	"github.com/hepframe/hepframe/internal/queries"
	"github.com/hepframe/hepframe/internal/render"
	"github.com/hepframe/hepframe/internal/report"
	"github.com/hepframe/hepframe/internal/schema"
)

const (
	defaultRepetitions = 1
	maxRepetitions     = 1000
	syntheticInput     = "synthetic"
)

// ErrInvalidRequest is returned for requests that cannot be run as given.
var ErrInvalidRequest = errors.New("invalid request")

// Request selects what to run.
type Request struct {
	Query int `json:"query"`
	// Cores is the worker count; <= 0 uses every CPU.
	Cores int `json:"cores"`
	// Input is a path or glob. Empty selects the runner's default input.
	Input       string `json:"input"`
	Repetitions int    `json:"repetitions"`
}

func (r Request) normalized() Request {
	n := r
	if n.Repetitions <= 0 {
		n.Repetitions = defaultRepetitions
	}
	return n
}

// Result is the outcome of one Request.
type Result struct {
	Query    int            `json:"query"`
	Name     string         `json:"name"`
	Input    string         `json:"input"`
	Cores    int            `json:"cores"`
	Files    int            `json:"files"`
	Events   int            `json:"events"`
	Integral float64        `json:"integral"`
	Summary  report.Summary `json:"summary"`
	Runs     []*storage.Run `json:"runs"`
	Plots    []string       `json:"plots,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithRunStore persists every repetition.
func WithRunStore(s storage.RunStore) Option {
	return func(r *Runner) { r.runs = s }
}

// WithLog appends every repetition to a benchmark log.
func WithLog(l *report.LogWriter) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics reports passes and runs to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLayout validates every opened dataset against layout.
func WithLayout(layout *schema.Layout) Option {
	return func(r *Runner) { r.layout = layout }
}

// WithRender draws the histograms of the last repetition into dir.
func WithRender(dir string, opts render.Options) Option {
	return func(r *Runner) {
		r.renderDir = dir
		r.renderOpts = opts
	}
}

// WithDefaultInput is used by requests that leave Input empty.
func WithDefaultInput(input string) Option {
	return func(r *Runner) { r.defaultInput = input }
}

// WithSynthetic serves the input "synthetic" from n generated events.
func WithSynthetic(n int, seed uint64) Option {
	return func(r *Runner) {
		r.syntheticEvents = n
		r.seed = seed
	}
}

// WithRoot confines non-synthetic inputs to the directory tree under root.
// Relative inputs are resolved against it.
func WithRoot(root string) Option {
	return func(r *Runner) { r.root = root }
}

// WithMaxCores rejects requests asking for more than n workers. n <= 0 uses
// runtime.NumCPU().
func WithMaxCores(n int) Option {
	return func(r *Runner) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		r.maxCores = n
	}
}

// WithTimeout bounds a whole Run call.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// Runner executes benchmark requests. It is safe for concurrent use.
type Runner struct {
	runs       storage.RunStore
	log        *report.LogWriter
	metrics    *metrics.Metrics
	layout     *schema.Layout
	renderDir  string
	renderOpts render.Options
	timeout    time.Duration
	logger     *slog.Logger
	root       string
	maxCores   int

	defaultInput    string
	syntheticEvents int
	seed            uint64

	synthOnce  sync.Once
	synthStore *column.Store
	synthErr   error

	now func() time.Time
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run opens the input, executes the query Repetitions times on a fresh graph
// each time and returns the timings. A failed repetition aborts the request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := r.run(ctx, req)
	if r.metrics != nil {
		r.metrics.RunFinished(req.Query, err)
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, req Request) (*Result, error) {
	req = req.normalized()
	if req.Repetitions > maxRepetitions {
		return nil, fmt.Errorf("%w: repetitions must be <= %d", ErrInvalidRequest, maxRepetitions)
	}
	if r.maxCores > 0 && req.Cores > r.maxCores {
		return nil, fmt.Errorf("%w: cores must be <= %d", ErrInvalidRequest, r.maxCores)
	}
	q, err := queries.Get(req.Query)
	if err != nil {
		return nil, err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	input := req.Input
	if input == "" {
		input = r.defaultInput
	}
	path, err := r.resolve(input)
	if err != nil {
		return nil, err
	}
	store, err := r.open(ctx, path, q)
	if err != nil {
		if r.root != "" && errors.Is(err, engerr.ErrDatasetNotFound) {
			// keep server paths out of the error
			return nil, fmt.Errorf("%w: %s", engerr.ErrDatasetNotFound, input)
		}
		return nil, err
	}

	res := &Result{
		Query:  q.ID,
		Name:   q.Name,
		Input:  input,
		Files:  len(store.Sources()),
		Events: store.Len(),
	}

	r.logger.Info("[Runner] Starting run",
		"query", q.ID,
		"input", input,
		"files", res.Files,
		"events", res.Events,
		"cores", req.Cores,
		"repetitions", req.Repetitions,
	)

	durations := make([]time.Duration, 0, req.Repetitions)
	var sinks []pipeline.Sink
	for rep := 1; rep <= req.Repetitions; rep++ {
		opts := []pipeline.Option{pipeline.WithConcurrency(req.Cores), pipeline.WithLogger(r.logger)}
		if r.metrics != nil {
			opts = append(opts, pipeline.WithObserver(r.metrics.Observer(q.ID)))
		}
		g := pipeline.New(store, opts...)
		res.Cores = g.Concurrency()
		sinks = q.Build(g.Root())

		started := r.now()
		t0 := time.Now()
		integral, err := pipeline.Integral(ctx, sinks...)
		elapsed := time.Since(t0)
		if err != nil {
			return nil, fmt.Errorf("query %d repetition %d: %w", q.ID, rep, err)
		}

		durations = append(durations, elapsed)
		res.Integral = integral

		if err := r.record(ctx, res, rep, elapsed, started); err != nil {
			return nil, err
		}
	}
	res.Summary = report.Summarize(durations)

	if r.renderDir != "" {
		plots, err := r.render(ctx, q, sinks)
		if err != nil {
			return nil, err
		}
		res.Plots = plots
	}

	r.logger.Info("[Runner] Run complete",
		"query", q.ID,
		"cores", res.Cores,
		"integral", res.Integral,
		"median", res.Summary.Median,
		"min", res.Summary.Min,
	)
	return res, nil
}

// resolve maps input onto a path under the configured root. Patterns are
// cleaned lexically, so ".." segments cannot climb out of the root.
func (r *Runner) resolve(input string) (string, error) {
	if r.root == "" || input == "" || r.isSynthetic(input) {
		return input, nil
	}
	root, err := filepath.Abs(r.root)
	if err != nil {
		return "", fmt.Errorf("dataset root: %w", err)
	}
	path := input
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: input %q is outside the dataset root", ErrInvalidRequest, input)
	}
	return path, nil
}

func (r *Runner) isSynthetic(input string) bool {
	return input == syntheticInput && r.syntheticEvents > 0
}

func (r *Runner) open(ctx context.Context, input string, q queries.Query) (*column.Store, error) {
	if r.isSynthetic(input) {
		r.synthOnce.Do(func() {
			r.synthStore, r.synthErr = dataset.Generate(r.syntheticEvents, r.seed)
		})
		if r.synthErr != nil {
			return nil, r.synthErr
		}
		if r.layout != nil {
			// the generated store carries every column, so strict layouts are checked whole
			layout := r.layout
			if !layout.StrictMode {
				layout = layout.Restrict(q.Columns)
			}
			if err := layout.Check(r.synthStore); err != nil {
				return nil, fmt.Errorf("%w: layout %s v%d: %w", engerr.ErrSchema, r.layout.Name, r.layout.Version, err)
			}
		}
		return r.synthStore, nil
	}
	if input == "" {
		return nil, fmt.Errorf("%w: no input given", engerr.ErrDatasetNotFound)
	}

	opts := []dataset.Option{dataset.WithColumns(q.Columns...), dataset.WithLogger(r.logger)}
	if r.layout != nil {
		opts = append(opts, dataset.WithLayout(r.layout))
	}
	return dataset.Open(ctx, input, opts...)
}

func (r *Runner) record(ctx context.Context, res *Result, rep int, elapsed time.Duration, started time.Time) error {
	if r.log != nil {
		err := r.log.Append(report.Entry{
			Query:    res.Query,
			Cores:    res.Cores,
			Files:    res.Files,
			Events:   res.Events,
			Duration: elapsed,
			Integral: res.Integral,
		})
		if err != nil {
			return fmt.Errorf("append benchmark log: %w", err)
		}
	}

	run := &storage.Run{
		ID:         uuid.New(),
		Query:      res.Query,
		Cores:      res.Cores,
		Files:      res.Files,
		Events:     res.Events,
		Input:      res.Input,
		Repetition: rep,
		Duration:   elapsed,
		Integral:   decimal.NewFromFloat(res.Integral),
		StartedAt:  started.UTC(),
	}
	if r.runs != nil {
		if err := r.runs.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	res.Runs = append(res.Runs, run)

	r.logger.Debug("[Runner] Repetition complete",
		"query", res.Query,
		"repetition", rep,
		"duration", elapsed,
		"integral", res.Integral,
	)
	return nil
}

func (r *Runner) render(ctx context.Context, q queries.Query, sinks []pipeline.Sink) ([]string, error) {
	var plots []string
	for i, s := range sinks {
		acc, err := s.Result(ctx)
		if err != nil {
			return nil, err
		}
		h, ok := acc.(*aggregation.Hist1D)
		if !ok {
			continue
		}
		title := ""
		if i < len(q.Titles) {
			title = q.Titles[i]
		}
		path := filepath.Join(r.renderDir, render.FileName(q.ID, i))
		if err := render.Histogram(path, fmt.Sprintf("Query %d: %s", q.ID, q.Description), title, h, r.renderOpts); err != nil {
			return nil, err
		}
		plots = append(plots, path)
	}
	return plots, nil
}
