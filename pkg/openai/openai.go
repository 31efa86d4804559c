// Package openai generates images through the OpenAI Images API.
//
// DALL-E models answer with a short-lived result URL which the client
// downloads; gpt-image-1 answers with inline base64. Generate hides
// the difference and always returns image bytes.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

// Image generation models.
const (
	ModelDallE3    = "dall-e-3"
	ModelDallE2    = "dall-e-2"
	ModelGPTImage1 = "gpt-image-1"

	// DefaultModel is used when an ImageRequest names no model.
	DefaultModel = ModelDallE3
)

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

// WithHTTPClient sets the HTTP client for both API calls and result
// downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// Client generates images.
type Client struct {
	api  oai.Client
	http *http.Client
}

// NewClient returns a Client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}

	apiOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		apiOpts = append(apiOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &Client{
		api:  oai.NewClient(apiOpts...),
		http: hc,
	}
}

// ImageRequest is the payload for image generation.
type ImageRequest struct {
	// Prompt describes the image. Required.
	Prompt string

	// Model selects the generation model. Empty means DefaultModel.
	Model string

	// Size is the output resolution, e.g. "1024x1024" or "1792x1024".
	// Empty lets the provider choose.
	Size string

	// Quality is "standard" or "hd" for DALL-E 3.
	Quality string

	// Style is "natural" or "vivid" for DALL-E 3.
	Style string
}

// Image is one generated image.
type Image struct {
	// Bytes is the image content.
	Bytes []byte

	// RevisedPrompt is the prompt the model actually rendered, when
	// the provider rewrote it.
	RevisedPrompt string
}

// Generate renders req and returns the image.
func (c *Client) Generate(ctx context.Context, req *ImageRequest) (*Image, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	params := oai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  oai.ImageModel(model),
		N:      oai.Int(1),
	}
	// gpt-image-1 always answers inline and rejects response_format.
	if strings.HasPrefix(model, "dall-e") {
		params.ResponseFormat = oai.ImageGenerateParamsResponseFormatURL
	}
	if req.Size != "" {
		params.Size = oai.ImageGenerateParamsSize(req.Size)
	}
	if req.Quality != "" {
		params.Quality = oai.ImageGenerateParamsQuality(req.Quality)
	}
	if req.Style != "" {
		params.Style = oai.ImageGenerateParamsStyle(req.Style)
	}

	resp, err := c.api.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindMalformedResponse,
			Provider: "openai",
			Message:  "no image in response",
		}
	}
	data := resp.Data[0]

	img := &Image{RevisedPrompt: data.RevisedPrompt}
	switch {
	case data.B64JSON != "":
		img.Bytes, err = base64.StdEncoding.DecodeString(data.B64JSON)
		if err != nil {
			return nil, &remotejob.Error{
				Kind:     remotejob.KindMalformedResponse,
				Provider: "openai",
				Message:  "decode inline image",
				Err:      err,
			}
		}
	case data.URL != "":
		img.Bytes, err = c.download(ctx, data.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &remotejob.Error{
			Kind:     remotejob.KindMalformedResponse,
			Provider: "openai",
			Message:  "image has neither url nor inline data",
		}
	}
	return img, nil
}

// download fetches a result URL. Result URLs are pre-signed, so no
// credential travels with the request.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindTransport,
			Provider: "openai",
			Message:  "download image",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindTransport,
			Provider: "openai",
			Message:  "download image",
			Err:      err,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &remotejob.Error{
			Kind:       remotejob.KindTransport,
			Provider:   "openai",
			HTTPStatus: resp.StatusCode,
			Message:    "download image",
		}
	}
	return body, nil
}

func wrapAPIError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return &remotejob.Error{
			Kind:       remotejob.KindProviderRejected,
			Provider:   "openai",
			HTTPStatus: apiErr.StatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &remotejob.Error{
		Kind:     remotejob.KindTransport,
		Provider: "openai",
		Err:      err,
	}
}
