package kling

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

const (
	// DefaultBaseURL is the Kling API endpoint.
	DefaultBaseURL = "https://api.klingai.com"

	// DefaultPollInterval is the status poll cadence for video tasks.
	DefaultPollInterval = 3 * time.Second

	// DefaultMaxWait bounds a video generation wait.
	DefaultMaxWait = 10 * time.Minute

	// DefaultDownloadTimeout bounds a result video download.
	DefaultDownloadTimeout = 2 * time.Minute
)

// Video generation models.
const (
	ModelV1       = "kling-v1"
	ModelV16      = "kling-v1-6"
	ModelV2Master = "kling-v2-master"
)

// Generation modes.
const (
	ModeStd = "std"
	ModePro = "pro"
)

type config struct {
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
}

// Option configures Kling adapters.
type Option func(*config)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithPollInterval sets the status poll cadence.
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

// TextToVideoRequest is the payload for text-to-video generation.
type TextToVideoRequest struct {
	Model          string  `json:"model_name,omitempty" yaml:"model,omitempty"`
	Prompt         string  `json:"prompt" yaml:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty" yaml:"negative_prompt,omitempty"`
	CFGScale       float64 `json:"cfg_scale,omitempty" yaml:"cfg_scale,omitempty"`
	Mode           string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	AspectRatio    string  `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty"`
	Duration       string  `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ImageToVideoRequest is the payload for image-to-video generation.
// Image takes a URL or raw base64 (see ImageFromFile).
type ImageToVideoRequest struct {
	Model          string  `json:"model_name,omitempty" yaml:"model,omitempty"`
	Image          string  `json:"image" yaml:"image"`
	ImageTail      string  `json:"image_tail,omitempty" yaml:"image_tail,omitempty"`
	Prompt         string  `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	NegativePrompt string  `json:"negative_prompt,omitempty" yaml:"negative_prompt,omitempty"`
	CFGScale       float64 `json:"cfg_scale,omitempty" yaml:"cfg_scale,omitempty"`
	Mode           string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Duration       string  `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// TextToVideoAdapter returns the adapter for POST /v1/videos/text2video.
// apiKey must have the form "ACCESS_KEY:SECRET_KEY".
func TextToVideoAdapter(apiKey string, opts ...Option) *remotejob.Adapter {
	return newAdapter(apiKey, "text2video", opts)
}

// ImageToVideoAdapter returns the adapter for POST /v1/videos/image2video.
func ImageToVideoAdapter(apiKey string, opts ...Option) *remotejob.Adapter {
	return newAdapter(apiKey, "image2video", opts)
}

func newAdapter(apiKey, taskType string, opts []Option) *remotejob.Adapter {
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
		Name:       "kling",
		Credential: remotejob.SignedToken(apiKey),
		NewSubmitRequest: func(ctx context.Context, payload any) (*http.Request, error) {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/videos/"+taskType, bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		},
		ParseSubmit: func(body []byte) (string, error) {
			data, err := envelope(body)
			if err != nil {
				return "", err
			}
			var d struct {
				TaskID string `json:"task_id"`
			}
			if err := json.Unmarshal(data, &d); err != nil {
				return "", fmt.Errorf("decode task data: %w", err)
			}
			if d.TaskID == "" {
				return "", fmt.Errorf("response has no task_id")
			}
			return d.TaskID, nil
		},
		StatusURL: func(id string) string {
			return base + "/v1/videos/" + taskType + "/" + id
		},
		ParseStatus: func(body []byte) (string, error) {
			data, err := envelope(body)
			if err != nil {
				return "", err
			}
			var d struct {
				TaskStatus string `json:"task_status"`
			}
			if err := json.Unmarshal(data, &d); err != nil {
				return "", fmt.Errorf("decode task status: %w", err)
			}
			if d.TaskStatus == "" {
				return "", fmt.Errorf("response has no task_status")
			}
			return d.TaskStatus, nil
		},
		StatusMap: map[string]remotejob.State{
			"submitted":  remotejob.StatePending,
			"processing": remotejob.StateRunning,
			"succeed":    remotejob.StateSucceeded,
			"failed":     remotejob.StateFailed,
		},
		FailureMessage: func(body []byte) string {
			data, err := envelope(body)
			if err != nil {
				return ""
			}
			var d struct {
				TaskStatusMsg string `json:"task_status_msg"`
			}
			json.Unmarshal(data, &d)
			return d.TaskStatusMsg
		},
		Artifacts: func(body []byte) ([]string, error) {
			res, err := ParseResult(body)
			if err != nil {
				return nil, err
			}
			urls := make([]string, 0, len(res.Videos))
			for _, v := range res.Videos {
				if v.URL != "" {
					urls = append(urls, v.URL)
				}
			}
			return urls, nil
		},
		PollInterval:    cfg.pollInterval,
		MaxWait:         cfg.maxWait,
		DownloadTimeout: DefaultDownloadTimeout,
	}
}

// envelope unwraps the {code, message, data} wrapper every Kling
// response carries. A non-zero code is a provider rejection even on
// HTTP 200.
func envelope(body []byte) (json.RawMessage, error) {
	var env struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Code != 0 {
		return nil, &remotejob.Error{
			Kind:    remotejob.KindProviderRejected,
			Message: fmt.Sprintf("%s (code=%d)", env.Message, env.Code),
		}
	}
	return env.Data, nil
}

// Video is one generated video.
type Video struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Duration string `json:"duration"`
}

// TaskResult is the payload of a finished video task.
type TaskResult struct {
	TaskID     string  `json:"task_id"`
	TaskStatus string  `json:"task_status"`
	Videos     []Video `json:"videos"`
}

// ParseResult extracts the typed result from a final status body.
func ParseResult(body []byte) (*TaskResult, error) {
	data, err := envelope(body)
	if err != nil {
		return nil, err
	}
	var d struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		TaskResult struct {
			Videos []Video `json:"videos"`
		} `json:"task_result"`
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode task result: %w", err)
	}
	return &TaskResult{
		TaskID:     d.TaskID,
		TaskStatus: d.TaskStatus,
		Videos:     d.TaskResult.Videos,
	}, nil
}

// ImageFromFile reads path and returns the raw base64 string Kling
// expects for image inputs. Kling takes bare base64, not a data: URI.
func ImageFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
