package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

func TestResolveModel(t *testing.T) {
	if got := ResolveModel("flash"); got != ModelFlashImage {
		t.Errorf("flash = %s", got)
	}
	if got := ResolveModel("Pro"); got != ModelProImage {
		t.Errorf("Pro = %s", got)
	}
	if got := ResolveModel("gemini-3-image"); got != "gemini-3-image" {
		t.Errorf("pass-through = %s", got)
	}
}

func TestExtractImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "Here is your fox. "},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("img")}},
					{Text: "Enjoy."},
				},
			},
		}},
	}

	img, err := extractImage(resp)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("mime = %s", img.MIMEType)
	}
	if string(img.Data) != "img" {
		t.Errorf("data = %q", img.Data)
	}
	if img.Text != "Here is your fox. Enjoy." {
		t.Errorf("text = %q", img.Text)
	}
}

func TestExtractImageTextOnly(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: "I cannot generate that image."}},
			},
		}},
	}

	_, err := extractImage(resp)
	if err == nil {
		t.Fatal("expected error")
	}
	e, ok := remotejob.AsError(err)
	if !ok || !e.IsMalformedResponse() {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(e.Message, "I cannot generate that image.") {
		t.Errorf("message = %q", e.Message)
	}
}

func TestExtractImageNoCandidates(t *testing.T) {
	if _, err := extractImage(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error")
	}
}

func TestInputImageFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	im, err := InputImageFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if im.MIMEType != "image/jpeg" {
		t.Errorf("mime = %s", im.MIMEType)
	}
	if string(im.Data) != "jpeg" {
		t.Errorf("data = %q", im.Data)
	}

	if _, err := InputImageFromFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error")
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ModelFlashImage) {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {
					"parts": [{"inlineData": {"mimeType": "image/png", "data": "aW1n"}}],
					"role": "model"
				},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer srv.Close()

	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	if err != nil {
		t.Fatal(err)
	}

	img, err := NewClientFrom(gc).Generate(context.Background(), &ImageRequest{
		Prompt:      "a red fox",
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != "img" {
		t.Errorf("data = %q", img.Data)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("mime = %s", img.MIMEType)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	c := NewClientFrom(nil)
	if _, err := c.Generate(context.Background(), &ImageRequest{}); err == nil {
		t.Error("expected error")
	}
}
