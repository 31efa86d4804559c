package remotejob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Submit sends the payload to the provider and returns a handle to
// the created job. Submission is never retried.
func (r *Runner) Submit(ctx context.Context, a *Adapter, payload any) (*Job, error) {
	if a.Credential != nil {
		if err := a.Credential.Validate(); err != nil {
			return nil, tag(a, err)
		}
	}
	return r.submit(ctx, a, payload)
}

func (r *Runner) submit(ctx context.Context, a *Adapter, payload any) (*Job, error) {
	req, err := a.NewSubmitRequest(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	if err := r.prepare(req, a); err != nil {
		// Streaming bodies (multipart pipes) block their writer until
		// the body is consumed or closed.
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, tag(a, err)
	}

	resp, err := r.cfg.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: a.Name, Message: "submit", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: a.Name, Message: "read submit response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       KindProviderRejected,
			Provider:   a.Name,
			HTTPStatus: resp.StatusCode,
			Body:       body,
			Message:    "submit rejected",
		}
	}

	id, err := a.ParseSubmit(body)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return nil, tag(a, pe)
		}
		return nil, &Error{
			Kind:     KindMalformedResponse,
			Provider: a.Name,
			Body:     body,
			Message:  "submit response",
			Err:      err,
		}
	}

	now := r.cfg.clock.Now()
	return &Job{
		ID:        id,
		Provider:  a.Name,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// prepare applies static adapter headers and the credential to req.
func (r *Runner) prepare(req *http.Request, a *Adapter) error {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}
	if a.Credential != nil {
		return a.Credential.Apply(req, r.cfg.clock.Now())
	}
	return nil
}
