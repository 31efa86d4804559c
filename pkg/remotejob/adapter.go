package remotejob

import (
	"context"
	"net/http"
	"time"
)

// Default cadence for adapters that leave theirs unset.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxWait         = 10 * time.Minute
	DefaultDownloadTimeout = 5 * time.Minute
)

// Adapter describes one provider: how to authorize requests, where to
// submit and poll, and how to read the provider's responses. Adapters
// are plain data plus small parse functions; the engine owns the
// lifecycle.
type Adapter struct {
	// Name identifies the provider in logs and errors.
	Name string

	// Credential authorizes every request sent for this adapter.
	Credential Credential

	// Headers are static headers added to every request, such as
	// provider API version pins.
	Headers map[string]string

	// NewSubmitRequest builds the submission request for a payload.
	// The engine adds Headers and the Credential before sending.
	NewSubmitRequest func(ctx context.Context, payload any) (*http.Request, error)

	// ParseSubmit extracts the provider job ID from an accepted
	// submission body. Returning a *Error passes it through to the
	// caller unchanged (for providers that signal rejection inside a
	// 2xx envelope); any other error is reported as a malformed
	// response.
	ParseSubmit func(body []byte) (string, error)

	// StatusURL returns the status polling URL for a job ID.
	StatusURL func(jobID string) string

	// ParseStatus extracts the provider's raw status value from a
	// status body. The *Error pass-through rule of ParseSubmit
	// applies here too.
	ParseStatus func(body []byte) (string, error)

	// StatusMap translates raw provider statuses to normalized
	// states. Lookups are case-sensitive. Raw values missing from
	// the map never terminate the job; the engine logs them and
	// keeps polling as running.
	StatusMap map[string]State

	// FailureMessage extracts the provider's failure reason from a
	// terminal status body. The engine reports it verbatim.
	FailureMessage func(body []byte) string

	// Artifacts extracts artifact locators from a succeeded status
	// body, in provider order. Locators are URLs, or data: URIs for
	// inline results.
	Artifacts func(body []byte) ([]string, error)

	// PollInterval is the fixed delay between status queries.
	PollInterval time.Duration

	// MaxWait bounds the total polling time.
	MaxWait time.Duration

	// DownloadAuth applies Credential and Headers to artifact
	// downloads, for providers whose artifacts live behind
	// authenticated endpoints rather than public URLs.
	DownloadAuth bool

	// DownloadTimeout bounds a single artifact download.
	DownloadTimeout time.Duration
}

func (a *Adapter) pollInterval() time.Duration {
	if a.PollInterval > 0 {
		return a.PollInterval
	}
	return DefaultPollInterval
}

func (a *Adapter) maxWait() time.Duration {
	if a.MaxWait > 0 {
		return a.MaxWait
	}
	return DefaultMaxWait
}

func (a *Adapter) downloadTimeout() time.Duration {
	if a.DownloadTimeout > 0 {
		return a.DownloadTimeout
	}
	return DefaultDownloadTimeout
}
