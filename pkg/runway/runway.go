package runway

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
	// DefaultBaseURL is the Runway developer API endpoint.
	DefaultBaseURL = "https://api.dev.runwayml.com"

	// APIVersion pins the API revision via X-Runway-Version.
	APIVersion = "2024-11-06"

	// DefaultPollInterval is the task poll cadence.
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxWait bounds a video generation wait.
	DefaultMaxWait = 10 * time.Minute

	// DefaultDownloadTimeout bounds a result video download.
	DefaultDownloadTimeout = 2 * time.Minute
)

// Video generation models.
const (
	ModelGen4Turbo  = "gen4_turbo"
	ModelGen3ATurbo = "gen3a_turbo"
)

// Output ratios in the pixel form the API expects.
const (
	RatioLandscape = "1280:720"
	RatioPortrait  = "720:1280"
	RatioSquare    = "1080:1080"
)

type config struct {
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
}

// Option configures the Runway adapter.
type Option func(*config)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithPollInterval sets the task poll cadence.
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

// ImageToVideoRequest is the payload for POST /v1/image_to_video.
type ImageToVideoRequest struct {
	// Model selects the generation model. Empty means ModelGen4Turbo.
	Model string `json:"model" yaml:"model,omitempty"`

	// PromptImage is the reference image, as a data: URI or a public
	// URL. Required.
	PromptImage string `json:"promptImage" yaml:"prompt_image"`

	// PromptText describes the desired motion.
	PromptText string `json:"promptText,omitempty" yaml:"prompt_text,omitempty"`

	// Ratio is the output resolution, e.g. RatioLandscape. Empty
	// means RatioLandscape.
	Ratio string `json:"ratio,omitempty" yaml:"ratio,omitempty"`

	// Duration is the clip length in seconds, 5 or 10. Zero means 5.
	Duration int `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Mask marks the region to repaint, as a data: URI, for
	// inpainting runs.
	Mask string `json:"mask,omitempty" yaml:"mask,omitempty"`
}

func (r *ImageToVideoRequest) withDefaults() *ImageToVideoRequest {
	out := *r
	if out.Model == "" {
		out.Model = ModelGen4Turbo
	}
	if out.Ratio == "" {
		out.Ratio = RatioLandscape
	}
	if out.Duration == 0 {
		out.Duration = 5
	}
	return &out
}

// Adapter returns the adapter for POST /v1/image_to_video, polled
// through GET /v1/tasks/{id}.
func Adapter(apiSecret string, opts ...Option) *remotejob.Adapter {
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
		Name:       "runway",
		Credential: remotejob.BearerKey(apiSecret),
		Headers: map[string]string{
			"X-Runway-Version": APIVersion,
		},
		NewSubmitRequest: func(ctx context.Context, payload any) (*http.Request, error) {
			if r, ok := asImageToVideo(payload); ok {
				if r.PromptImage == "" {
					return nil, fmt.Errorf("prompt image is required")
				}
				payload = r.withDefaults()
			}
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/image_to_video", bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		},
		ParseSubmit: func(body []byte) (string, error) {
			var d struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(body, &d); err != nil {
				return "", fmt.Errorf("decode task response: %w", err)
			}
			if d.ID == "" {
				return "", fmt.Errorf("response has no task id")
			}
			return d.ID, nil
		},
		StatusURL: func(id string) string {
			return base + "/v1/tasks/" + id
		},
		ParseStatus: func(body []byte) (string, error) {
			var d struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &d); err != nil {
				return "", fmt.Errorf("decode task status: %w", err)
			}
			if d.Status == "" {
				return "", fmt.Errorf("response has no status")
			}
			return d.Status, nil
		},
		StatusMap: map[string]remotejob.State{
			"PENDING":   remotejob.StatePending,
			"THROTTLED": remotejob.StatePending,
			"RUNNING":   remotejob.StateRunning,
			"SUCCEEDED": remotejob.StateSucceeded,
			"FAILED":    remotejob.StateFailed,
			"CANCELLED": remotejob.StateCanceled,
		},
		FailureMessage: func(body []byte) string {
			var d struct {
				Failure string `json:"failure"`
			}
			json.Unmarshal(body, &d)
			return d.Failure
		},
		Artifacts:       artifacts,
		PollInterval:    cfg.pollInterval,
		MaxWait:         cfg.maxWait,
		DownloadTimeout: DefaultDownloadTimeout,
	}
}

func asImageToVideo(payload any) (*ImageToVideoRequest, bool) {
	switch r := payload.(type) {
	case *ImageToVideoRequest:
		return r, true
	case ImageToVideoRequest:
		return &r, true
	default:
		return nil, false
	}
}

// artifacts reads the task output, which is a list of URLs or a bare
// URL depending on the model.
func artifacts(body []byte) ([]string, error) {
	var d struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("decode task output: %w", err)
	}
	out := bytes.TrimSpace(d.Output)
	if len(out) == 0 || bytes.Equal(out, []byte("null")) {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(out, &list); err == nil {
		return list, nil
	}

	var s string
	if err := json.Unmarshal(out, &s); err == nil {
		return []string{s}, nil
	}

	return nil, fmt.Errorf("unexpected output shape: %s", out)
}

// ImageDataURI reads an image file and returns the data: URI form
// promptImage and mask accept.
func ImageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	var mime string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	case ".webp":
		mime = "image/webp"
	default:
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
