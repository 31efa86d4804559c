package remotejob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// StatusResult is one observed status response.
type StatusResult struct {
	// State is the normalized state.
	State State

	// Raw is the provider's verbatim status value.
	Raw string

	// Body is the full status response body.
	Body json.RawMessage

	unmapped bool
}

// Status queries the job's status once and records any forward state
// transition on job.
func (r *Runner) Status(ctx context.Context, a *Adapter, job *Job) (*StatusResult, error) {
	res, err := r.statusOnce(ctx, a, job)
	if err != nil {
		return nil, err
	}
	if res.unmapped {
		r.cfg.logger.Warn("unmapped provider status",
			"provider", a.Name, "job_id", job.ID, "status", res.Raw)
	}
	r.advance(job, res.State, nil, r.cfg.logger.With("provider", a.Name, "job_id", job.ID))
	return res, nil
}

// Wait polls the job on a fixed interval until it reaches a terminal
// state.
//
// Transient status failures (transport errors, unparseable bodies)
// are logged and retried on the next tick; a provider rejection
// aborts immediately. The wall-clock budget is checked once per tick.
// On success the final status is returned; failed and canceled jobs,
// exhausted budgets and context cancellation are reported as errors.
func (r *Runner) Wait(ctx context.Context, a *Adapter, job *Job, opts ...RunOption) (*StatusResult, error) {
	o := newRunOptions(a, opts...)
	log := r.cfg.logger.With("provider", a.Name, "job_id", job.ID, "run_id", o.runID)
	return r.wait(ctx, a, job, o, log)
}

func (r *Runner) wait(ctx context.Context, a *Adapter, job *Job, o *runOptions, log *slog.Logger) (*StatusResult, error) {
	start := r.cfg.clock.Now()
	for {
		res, err := r.statusOnce(ctx, a, job)
		switch {
		case err == nil:
			if res.unmapped {
				log.Warn("unmapped provider status, still polling", "status", res.Raw)
			}
			r.advance(job, res.State, o, log)
			if res.State.Terminal() {
				return r.terminal(a, res)
			}
		case ctx.Err() != nil:
			return nil, &Error{Kind: KindCanceled, Provider: a.Name, Message: "canceled while polling", Err: ctx.Err()}
		default:
			var pe *Error
			if errors.As(err, &pe) && (pe.Kind == KindProviderRejected || pe.Kind == KindInvalidCredential) {
				return nil, err
			}
			log.Warn("status query failed, retrying next tick", "error", err)
		}

		elapsed := r.cfg.clock.Now().Sub(start)
		if elapsed >= o.timeout {
			log.Warn("polling budget exhausted", "elapsed", elapsed, "budget", o.timeout)
			return nil, &Error{
				Kind:     KindTimedOut,
				Provider: a.Name,
				Message:  fmt.Sprintf("no terminal state after %s (budget %s)", elapsed, o.timeout),
			}
		}
		if err := r.cfg.sleeper.Sleep(ctx, o.interval); err != nil {
			return nil, &Error{Kind: KindCanceled, Provider: a.Name, Message: "canceled while polling", Err: err}
		}
	}
}

// statusOnce performs a single status query.
func (r *Runner) statusOnce(ctx context.Context, a *Adapter, job *Job) (*StatusResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.StatusURL(job.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	if err := r.prepare(req, a); err != nil {
		return nil, tag(a, err)
	}

	resp, err := r.cfg.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: a.Name, Message: "status", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: a.Name, Message: "read status response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       KindProviderRejected,
			Provider:   a.Name,
			HTTPStatus: resp.StatusCode,
			Body:       body,
			Message:    "status rejected",
		}
	}

	raw, err := a.ParseStatus(body)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return nil, tag(a, pe)
		}
		return nil, &Error{
			Kind:     KindMalformedResponse,
			Provider: a.Name,
			Body:     body,
			Message:  "status response",
			Err:      err,
		}
	}

	state, ok := a.StatusMap[raw]
	if !ok {
		return &StatusResult{State: StateRunning, Raw: raw, Body: body, unmapped: true}, nil
	}
	return &StatusResult{State: state, Raw: raw, Body: body}, nil
}

// terminal maps a terminal status into the engine's outcome: the
// result for success, a classified error otherwise.
func (r *Runner) terminal(a *Adapter, res *StatusResult) (*StatusResult, error) {
	switch res.State {
	case StateSucceeded:
		return res, nil
	case StateCanceled:
		return nil, &Error{
			Kind:     KindJobCanceled,
			Provider: a.Name,
			Message:  r.failureMessage(a, res),
			Body:     res.Body,
		}
	default:
		return nil, &Error{
			Kind:     KindJobFailed,
			Provider: a.Name,
			Message:  r.failureMessage(a, res),
			Body:     res.Body,
		}
	}
}

func (r *Runner) failureMessage(a *Adapter, res *StatusResult) string {
	if a.FailureMessage == nil {
		return ""
	}
	return a.FailureMessage(res.Body)
}

// advance records an observed state on job, ignoring repeats and
// backward moves so transitions stay monotone.
func (r *Runner) advance(job *Job, next State, o *runOptions, log *slog.Logger) {
	if job.State.Terminal() {
		return
	}
	if next == job.State || next.rank() < job.State.rank() {
		return
	}
	prev := job.State
	job.State = next
	job.UpdatedAt = r.cfg.clock.Now()
	log.Info("job state changed", "from", prev, "to", next)
	if o != nil && o.onTransition != nil {
		o.onTransition(job, prev, next)
	}
}
