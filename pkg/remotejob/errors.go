package remotejob

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an engine error.
type Kind string

const (
	// KindInvalidCredential means the credential material does not
	// have the shape the provider requires.
	KindInvalidCredential Kind = "invalid_credential"

	// KindTransport means a network-level failure: connection,
	// timeout, or an unreadable or undownloadable response.
	KindTransport Kind = "transport"

	// KindProviderRejected means the provider answered with a
	// non-success status. Body carries the verbatim response.
	KindProviderRejected Kind = "provider_rejected"

	// KindMalformedResponse means a success response did not parse
	// into the shape the adapter expects.
	KindMalformedResponse Kind = "malformed_response"

	// KindEmptyResult means the job succeeded but produced no
	// artifact locators.
	KindEmptyResult Kind = "empty_result"

	// KindSinkWrite means the artifact sink failed. The sink's
	// atomicity contract guarantees the destination is untouched.
	KindSinkWrite Kind = "sink_write"

	// KindTimedOut means the polling budget ran out before the job
	// reached a terminal state. The job may still finish remotely.
	KindTimedOut Kind = "timed_out"

	// KindCanceled means the caller's context was canceled.
	KindCanceled Kind = "canceled"

	// KindJobFailed means the provider reported the job as failed.
	// Message carries the provider's reason verbatim.
	KindJobFailed Kind = "job_failed"

	// KindJobCanceled means the provider reported the job as canceled.
	KindJobCanceled Kind = "job_canceled"
)

// Error is the error type returned by the engine.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Provider names the adapter involved, when known.
	Provider string

	// HTTPStatus is the HTTP status code for provider rejections and
	// failed downloads.
	HTTPStatus int

	// Body is the provider's verbatim response body, when available.
	Body []byte

	// Message describes the failure. For job failures it is the
	// provider's reason, untouched.
	Message string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("remotejob: ")
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&b, " (http=%d)", e.HTTPStatus)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidCredential reports a malformed credential.
func (e *Error) IsInvalidCredential() bool { return e.Kind == KindInvalidCredential }

// IsTransport reports a network-level failure.
func (e *Error) IsTransport() bool { return e.Kind == KindTransport }

// IsProviderRejected reports a non-success provider response.
func (e *Error) IsProviderRejected() bool { return e.Kind == KindProviderRejected }

// IsMalformedResponse reports an unparseable success response.
func (e *Error) IsMalformedResponse() bool { return e.Kind == KindMalformedResponse }

// IsEmptyResult reports a successful job with no artifacts.
func (e *Error) IsEmptyResult() bool { return e.Kind == KindEmptyResult }

// IsSinkWrite reports a failed artifact sink.
func (e *Error) IsSinkWrite() bool { return e.Kind == KindSinkWrite }

// IsTimedOut reports an exhausted polling budget.
func (e *Error) IsTimedOut() bool { return e.Kind == KindTimedOut }

// IsCanceled reports caller-side cancellation.
func (e *Error) IsCanceled() bool { return e.Kind == KindCanceled }

// IsJobFailed reports a provider-side job failure.
func (e *Error) IsJobFailed() bool { return e.Kind == KindJobFailed }

// IsJobCanceled reports a provider-side job cancellation.
func (e *Error) IsJobCanceled() bool { return e.Kind == KindJobCanceled }

// AsError extracts *Error from an error.
//
// Example:
//
//	if e, ok := remotejob.AsError(err); ok {
//	    if e.IsProviderRejected() {
//	        fmt.Println(e.HTTPStatus, string(e.Body))
//	    }
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// tag fills in the provider on engine errors that lack it.
func tag(a *Adapter, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Provider == "" {
		e.Provider = a.Name
	}
	return err
}
