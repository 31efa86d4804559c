package remotejob

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Sink receives one artifact's bytes. Implementations must be atomic:
// after an error the destination is untouched, after success it holds
// exactly the written bytes. Partial artifacts are never visible.
type Sink interface {
	Put(ctx context.Context, r io.Reader) (int64, error)
}

// Artifact describes one retrieved artifact.
type Artifact struct {
	// Locator is the provider-issued artifact locator.
	Locator string `json:"locator"`

	// Bytes is the number of bytes written to the sink.
	Bytes int64 `json:"bytes"`
}

// Retrieve downloads the artifacts of a succeeded status into sinks.
// By default only the first locator is retrieved, into sink; with
// WithAllArtifacts every locator goes through the factory.
func (r *Runner) Retrieve(ctx context.Context, a *Adapter, res *StatusResult, sink Sink, opts ...RunOption) ([]Artifact, error) {
	o := newRunOptions(a, opts...)
	log := r.cfg.logger.With("provider", a.Name, "run_id", o.runID)
	return r.retrieve(ctx, a, res, sink, o, log)
}

func (r *Runner) retrieve(ctx context.Context, a *Adapter, res *StatusResult, sink Sink, o *runOptions, log *slog.Logger) ([]Artifact, error) {
	var locators []string
	if a.Artifacts != nil {
		var err error
		locators, err = a.Artifacts(res.Body)
		if err != nil {
			return nil, &Error{
				Kind:     KindMalformedResponse,
				Provider: a.Name,
				Body:     res.Body,
				Message:  "artifact locators",
				Err:      err,
			}
		}
	}
	if len(locators) == 0 {
		return nil, &Error{
			Kind:     KindEmptyResult,
			Provider: a.Name,
			Body:     res.Body,
			Message:  "job succeeded but returned no artifacts",
		}
	}
	if o.allArtifacts == nil {
		locators = locators[:1]
	}

	artifacts := make([]Artifact, 0, len(locators))
	for i, locator := range locators {
		dst := sink
		if o.allArtifacts != nil {
			var err error
			dst, err = o.allArtifacts(i, locator)
			if err != nil {
				return nil, &Error{
					Kind:     KindSinkWrite,
					Provider: a.Name,
					Message:  fmt.Sprintf("open sink for artifact %d", i),
					Err:      err,
				}
			}
		}
		n, err := r.download(ctx, a, locator, dst)
		if err != nil {
			return nil, tag(a, err)
		}
		log.Info("artifact retrieved", "locator", locator, "bytes", n)
		artifacts = append(artifacts, Artifact{Locator: locator, Bytes: n})
	}
	return artifacts, nil
}

// download streams one locator into sink. data: locators decode
// inline without a network round trip.
func (r *Runner) download(ctx context.Context, a *Adapter, locator string, sink Sink) (int64, error) {
	if strings.HasPrefix(locator, "data:") {
		data, err := decodeDataLocator(locator)
		if err != nil {
			return 0, &Error{Kind: KindMalformedResponse, Message: "inline artifact", Err: err}
		}
		n, err := sink.Put(ctx, bytes.NewReader(data))
		if err != nil {
			return 0, &Error{Kind: KindSinkWrite, Message: "write artifact", Err: err}
		}
		return n, nil
	}

	dctx, cancel := context.WithTimeout(ctx, a.downloadTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(dctx, http.MethodGet, locator, nil)
	if err != nil {
		return 0, &Error{Kind: KindTransport, Message: "create download request", Err: err}
	}
	// Credentials go only to providers that serve artifacts from
	// authenticated endpoints, never to third-party result URLs.
	if a.DownloadAuth {
		if err := r.prepare(req, a); err != nil {
			return 0, err
		}
	} else if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := r.cfg.httpClient.Do(req)
	if err != nil {
		return 0, &Error{Kind: KindTransport, Message: "download artifact", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &Error{
			Kind:       KindTransport,
			HTTPStatus: resp.StatusCode,
			Body:       snippet,
			Message:    "artifact download failed",
		}
	}

	n, err := sink.Put(ctx, resp.Body)
	if err != nil {
		return 0, &Error{Kind: KindSinkWrite, Message: "write artifact", Err: err}
	}
	return n, nil
}

// decodeDataLocator decodes a data: URI into raw bytes.
func decodeDataLocator(locator string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(locator, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data locator has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	return []byte(payload), nil
}
