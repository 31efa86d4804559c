package remotejob

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultHTTPTimeout is the per-request timeout of the default
	// HTTP client.
	DefaultHTTPTimeout = 60 * time.Second

	userAgent = "mediagen-go/1.0"
)

// Doer issues HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Runner drives remote jobs through submit, poll and retrieve.
//
// A Runner is safe for concurrent use; each Run call drives exactly
// one job.
type Runner struct {
	cfg runnerConfig
}

type runnerConfig struct {
	httpClient Doer
	logger     *slog.Logger
	clock      Clock
	sleeper    Sleeper
}

// Option configures a Runner.
type Option func(*runnerConfig)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(c Doer) Option {
	return func(cfg *runnerConfig) {
		cfg.httpClient = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *runnerConfig) {
		cfg.logger = l
	}
}

// WithClock sets the time source used for budgets, job timestamps and
// token minting.
func WithClock(c Clock) Option {
	return func(cfg *runnerConfig) {
		cfg.clock = c
	}
}

// WithSleeper sets the delay implementation used between polls.
func WithSleeper(s Sleeper) Option {
	return func(cfg *runnerConfig) {
		cfg.sleeper = s
	}
}

// NewRunner creates a Runner.
//
// Example:
//
//	runner := remotejob.NewRunner(
//	    remotejob.WithLogger(slog.Default()),
//	)
func NewRunner(opts ...Option) *Runner {
	cfg := runnerConfig{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
		clock:      systemClock{},
		sleeper:    systemSleeper{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner{cfg: cfg}
}

// TransitionFunc observes job state transitions.
type TransitionFunc func(job *Job, from, to State)

// SinkFactory builds a sink for the locator at index, for runs that
// retrieve every artifact.
type SinkFactory func(index int, locator string) (Sink, error)

// RunOption adjusts a single run.
type RunOption func(*runOptions)

type runOptions struct {
	timeout      time.Duration
	interval     time.Duration
	onTransition TransitionFunc
	runID        string
	allArtifacts SinkFactory
}

// WithTimeout overrides the adapter's MaxWait for this run.
func WithTimeout(d time.Duration) RunOption {
	return func(o *runOptions) {
		o.timeout = d
	}
}

// WithInterval overrides the adapter's PollInterval for this run.
func WithInterval(d time.Duration) RunOption {
	return func(o *runOptions) {
		o.interval = d
	}
}

// WithTransition registers a callback invoked on every observed state
// transition.
func WithTransition(f TransitionFunc) RunOption {
	return func(o *runOptions) {
		o.onTransition = f
	}
}

// WithRunID sets the run ID used in logs. Defaults to a random UUID.
func WithRunID(id string) RunOption {
	return func(o *runOptions) {
		o.runID = id
	}
}

// WithAllArtifacts retrieves every artifact locator through sinks
// built by factory, instead of only the first locator into the run's
// sink. The run's sink argument is ignored and may be nil.
func WithAllArtifacts(factory SinkFactory) RunOption {
	return func(o *runOptions) {
		o.allArtifacts = factory
	}
}

func newRunOptions(a *Adapter, opts ...RunOption) *runOptions {
	o := &runOptions{
		timeout:  a.maxWait(),
		interval: a.pollInterval(),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the outcome of a completed run.
type Result struct {
	// Job is the submitted job in its final state.
	Job *Job

	// Raw is the provider's final status response body.
	Raw json.RawMessage

	// Artifacts lists what was retrieved, in locator order.
	Artifacts []Artifact
}

// Run executes the full lifecycle: validate the credential, submit
// the payload, poll until terminal, retrieve artifacts into sink.
//
// No stage is retried. On success the returned Result holds the job,
// the provider's final response and the retrieved artifacts; on any
// failure the returned error classifies the outcome (see AsError).
//
// The polling budget is checked once per tick, so a run can overshoot
// its timeout by at most one in-flight status request.
func (r *Runner) Run(ctx context.Context, a *Adapter, payload any, sink Sink, opts ...RunOption) (*Result, error) {
	o := newRunOptions(a, opts...)
	log := r.cfg.logger.With("provider", a.Name, "run_id", o.runID)

	if a.Credential != nil {
		if err := a.Credential.Validate(); err != nil {
			return nil, tag(a, err)
		}
	}

	log.Info("submitting job")
	job, err := r.submit(ctx, a, payload)
	if err != nil {
		return nil, err
	}
	log = log.With("job_id", job.ID)
	log.Info("job submitted", "state", job.State)

	final, err := r.wait(ctx, a, job, o, log)
	if err != nil {
		return nil, err
	}

	artifacts, err := r.retrieve(ctx, a, final, sink, o, log)
	if err != nil {
		return nil, err
	}

	log.Info("run complete", "artifacts", len(artifacts))
	return &Result{Job: job, Raw: final.Body, Artifacts: artifacts}, nil
}
