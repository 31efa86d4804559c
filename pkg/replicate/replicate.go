package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

const (
	// DefaultBaseURL is the Replicate API endpoint.
	DefaultBaseURL = "https://api.replicate.com"

	// DefaultPollInterval is the prediction poll cadence.
	DefaultPollInterval = 3 * time.Second

	// DefaultMaxWait bounds a prediction wait.
	DefaultMaxWait = 5 * time.Minute
)

type config struct {
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
}

// Option configures the Replicate adapter.
type Option func(*config)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithPollInterval sets the prediction poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithMaxWait bounds the total polling time.
func WithMaxWait(d time.Duration) Option {
	return func(c *config) {
		c.maxWait = d
	}
}

// PredictionRequest is the payload for POST /v1/predictions.
type PredictionRequest struct {
	// Version is the model version ID to run.
	Version string `json:"version" yaml:"version"`

	// Input holds the model's input parameters.
	Input map[string]any `json:"input" yaml:"input"`
}

// Adapter returns the adapter for the Replicate predictions API.
func Adapter(apiToken string, opts ...Option) *remotejob.Adapter {
	cfg := &config{
		baseURL:      DefaultBaseURL,
		pollInterval: DefaultPollInterval,
		maxWait:      DefaultMaxWait,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	base := strings.TrimRight(cfg.baseURL, "/")

	return &remotejob.Adapter{
		Name:       "replicate",
		Credential: remotejob.BearerKey(apiToken),
		NewSubmitRequest: func(ctx context.Context, payload any) (*http.Request, error) {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/predictions", bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		},
		ParseSubmit: func(body []byte) (string, error) {
			var r struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(body, &r); err != nil {
				return "", fmt.Errorf("decode prediction: %w", err)
			}
			if r.ID == "" {
				return "", fmt.Errorf("response has no prediction id")
			}
			return r.ID, nil
		},
		StatusURL: func(id string) string {
			return base + "/v1/predictions/" + id
		},
		ParseStatus: func(body []byte) (string, error) {
			var r struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &r); err != nil {
				return "", fmt.Errorf("decode prediction status: %w", err)
			}
			if r.Status == "" {
				return "", fmt.Errorf("response has no status")
			}
			return r.Status, nil
		},
		StatusMap: map[string]remotejob.State{
			"starting":   remotejob.StatePending,
			"processing": remotejob.StateRunning,
			"succeeded":  remotejob.StateSucceeded,
			"failed":     remotejob.StateFailed,
			"canceled":   remotejob.StateCanceled,
		},
		FailureMessage: failureMessage,
		Artifacts:      artifacts,
		PollInterval:   cfg.pollInterval,
		MaxWait:        cfg.maxWait,
	}
}

// failureMessage reads the prediction's error field, which is usually
// a string but can be any JSON value.
func failureMessage(body []byte) string {
	var r struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &r); err != nil || len(r.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return string(r.Error)
}

// artifacts normalizes the prediction output into locators. Models
// return a bare URL, a list of URLs, or structured JSON; structured
// output becomes an inline data: locator so it can be written through
// a sink like any other artifact.
func artifacts(body []byte) ([]string, error) {
	var r struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode prediction output: %w", err)
	}
	out := bytes.TrimSpace(r.Output)
	if len(out) == 0 || bytes.Equal(out, []byte("null")) {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(out, &s); err == nil {
		return []string{s}, nil
	}

	var list []string
	if err := json.Unmarshal(out, &list); err == nil {
		return list, nil
	}

	return []string{
		"data:application/json;base64," + base64.StdEncoding.EncodeToString(out),
	}, nil
}

// DataURI reads path and returns a data: URI with the MIME type
// implied by the file extension, the input form Replicate models
// expect for local files.
func DataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return "data:" + mimeByExt(path) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func mimeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
