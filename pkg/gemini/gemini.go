// Package gemini generates and edits images with Gemini's native
// image models. The model answers inline: image bytes arrive as a
// content part next to any explanatory text, with no result URL to
// download.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

// Image generation models.
const (
	ModelFlashImage = "gemini-2.5-flash-image"
	ModelProImage   = "gemini-2.5-pro-image"

	// DefaultModel is used when an ImageRequest names no model.
	DefaultModel = ModelFlashImage
)

var modelAliases = map[string]string{
	"flash": ModelFlashImage,
	"pro":   ModelProImage,
}

// ResolveModel maps the short names "flash" and "pro" to their model
// IDs. Anything else is returned unchanged.
func ResolveModel(name string) string {
	if id, ok := modelAliases[strings.ToLower(name)]; ok {
		return id
	}
	return name
}

// Client generates images.
type Client struct {
	api *genai.Client
}

// NewClient returns a Client for the given API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{api: c}, nil
}

// NewClientFrom wraps an existing genai client.
func NewClientFrom(c *genai.Client) *Client {
	return &Client{api: c}
}

// InputImage is a reference image for editing requests.
type InputImage struct {
	MIMEType string
	Data     []byte
}

// InputImageFromFile reads path as an InputImage.
func InputImageFromFile(path string) (InputImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InputImage{}, fmt.Errorf("read image: %w", err)
	}
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".webp":
		mime = "image/webp"
	}
	return InputImage{MIMEType: mime, Data: data}, nil
}

// ImageRequest is the payload for image generation or editing.
type ImageRequest struct {
	// Prompt describes the image, or the edit to apply. Required.
	Prompt string

	// Model selects the generation model, by ID or short name. Empty
	// means DefaultModel.
	Model string

	// AspectRatio is the output shape, e.g. "16:9". Empty lets the
	// provider choose.
	AspectRatio string

	// InputImages are reference images for edits. The prompt applies
	// to them in order.
	InputImages []InputImage
}

// Image is one generated image.
type Image struct {
	// MIMEType is the image format, usually image/png.
	MIMEType string

	// Data is the image content.
	Data []byte

	// Text is the model's commentary, when it produced any alongside
	// the image.
	Text string
}

// Generate renders req and returns the image.
func (c *Client) Generate(ctx context.Context, req *ImageRequest) (*Image, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	} else {
		model = ResolveModel(model)
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, im := range req.InputImages {
		parts = append(parts, genai.NewPartFromBytes(im.Data, im.MIMEType))
	}
	contents := []*genai.Content{{Parts: parts, Role: genai.RoleUser}}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}

	resp, err := c.api.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return extractImage(resp)
}

// extractImage walks the response parts for the inline image.
func extractImage(resp *genai.GenerateContentResponse) (*Image, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindMalformedResponse,
			Provider: "gemini",
			Message:  "no candidates in response",
		}
	}

	var img Image
	for _, p := range resp.Candidates[0].Content.Parts {
		switch {
		case p.InlineData != nil && len(p.InlineData.Data) > 0:
			img.MIMEType = p.InlineData.MIMEType
			img.Data = p.InlineData.Data
		case p.Text != "":
			img.Text += p.Text
		}
	}
	if len(img.Data) == 0 {
		msg := "no image data in response"
		if img.Text != "" {
			msg = fmt.Sprintf("%s: %s", msg, img.Text)
		}
		return nil, &remotejob.Error{
			Kind:     remotejob.KindMalformedResponse,
			Provider: "gemini",
			Message:  msg,
		}
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/png"
	}
	return &img, nil
}

func wrapAPIError(err error) error {
	if e, ok := err.(*apierror.APIError); ok {
		err = e.Unwrap()
	}
	var ge genai.APIError
	if errors.As(err, &ge) {
		return &remotejob.Error{
			Kind:       remotejob.KindProviderRejected,
			Provider:   "gemini",
			HTTPStatus: ge.Code,
			Message:    ge.Message,
			Err:        err,
		}
	}
	return &remotejob.Error{
		Kind:     remotejob.KindTransport,
		Provider: "gemini",
		Err:      err,
	}
}
