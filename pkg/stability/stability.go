// Package stability generates images with the Stability AI stable
// image API. The API is synchronous and answers the multipart request
// with raw image bytes.
package stability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

const (
	// DefaultBaseURL is the Stability AI API endpoint.
	DefaultBaseURL = "https://api.stability.ai"

	// DefaultModel is used when an ImageRequest names no model.
	DefaultModel = "sd35-large"
)

// endpointModel resolves a model alias to its endpoint and, for the
// sd3 family, the model form field.
var endpointModel = map[string][2]string{
	"sd35-large":  {"sd3", "sd3.5-large"},
	"sd35-turbo":  {"sd3", "sd3.5-large-turbo"},
	"sd35-medium": {"sd3", "sd3.5-medium"},
	"sd3-large":   {"sd3", "sd3-large"},
	"sd3-medium":  {"sd3", "sd3-medium"},
	"core":        {"core", ""},
	"ultra":       {"ultra", ""},
}

type config struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*config)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// Client generates images.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	cfg := &config{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(cfg)
	}
	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		httpClient: hc,
	}
}

// ImageRequest is the payload for image generation.
type ImageRequest struct {
	// Prompt describes the image. Required.
	Prompt string

	// Model selects the model, by alias like "sd35-large" or by
	// endpoint name "core", "ultra", "sd3". Empty means DefaultModel.
	Model string

	// NegativePrompt describes what to avoid.
	NegativePrompt string

	// AspectRatio is the output shape, e.g. "16:9". Empty lets the
	// provider choose.
	AspectRatio string

	// StylePreset applies a named style, e.g. "anime" or "cinematic".
	StylePreset string

	// Seed fixes the noise seed. Zero omits it.
	Seed int64

	// OutputFormat is "png", "jpeg" or "webp". Empty means png.
	OutputFormat string
}

// Generate renders req and returns the image bytes.
func (c *Client) Generate(ctx context.Context, req *ImageRequest) ([]byte, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	endpoint := model
	modelParam := ""
	if em, ok := endpointModel[model]; ok {
		endpoint, modelParam = em[0], em[1]
	}
	format := req.OutputFormat
	if format == "" {
		format = "png"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"prompt", req.Prompt},
		{"output_format", format},
	}
	if modelParam != "" {
		fields = append(fields, [2]string{"model", modelParam})
	}
	if req.AspectRatio != "" {
		fields = append(fields, [2]string{"aspect_ratio", req.AspectRatio})
	}
	if req.NegativePrompt != "" {
		fields = append(fields, [2]string{"negative_prompt", req.NegativePrompt})
	}
	if req.StylePreset != "" {
		fields = append(fields, [2]string{"style_preset", req.StylePreset})
	}
	if req.Seed != 0 {
		fields = append(fields, [2]string{"seed", strconv.FormatInt(req.Seed, 10)})
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	url := c.baseURL + "/v2beta/stable-image/generate/" + endpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Accept", "image/*")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindTransport,
			Provider: "stability",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindTransport,
			Provider: "stability",
			Message:  "read response",
			Err:      err,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &remotejob.Error{
			Kind:       remotejob.KindProviderRejected,
			Provider:   "stability",
			HTTPStatus: resp.StatusCode,
			Body:       body,
		}
	}
	return body, nil
}
