package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

const (
	// DefaultBaseURL is the ElevenLabs API endpoint.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// DefaultPollInterval is the status poll cadence for dubbing
	// projects.
	DefaultPollInterval = 10 * time.Second

	// DefaultMaxWait bounds a dubbing wait. Dubbing a long video can
	// take tens of minutes.
	DefaultMaxWait = 30 * time.Minute

	// DefaultDownloadTimeout bounds a dubbed track download.
	DefaultDownloadTimeout = 5 * time.Minute
)

type config struct {
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
	httpClient   *http.Client
}

func defaultConfig() *config {
	return &config{
		baseURL:      DefaultBaseURL,
		pollInterval: DefaultPollInterval,
		maxWait:      DefaultMaxWait,
	}
}

// Option configures the dubbing adapter and the synchronous Client.
type Option func(*config)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithPollInterval sets the dubbing status poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithMaxWait bounds the total dubbing polling time.
func WithMaxWait(d time.Duration) Option {
	return func(c *config) {
		c.maxWait = d
	}
}

// WithHTTPClient sets the HTTP client used by the synchronous Client.
// Adapters ignore it; their requests go through the runner's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// DubRequest describes a dubbing job. Exactly one of FilePath and
// SourceURL selects the input media.
type DubRequest struct {
	// FilePath is a local audio or video file to upload.
	FilePath string

	// SourceURL is a public URL the provider fetches the media from.
	SourceURL string

	// TargetLang is the language to dub into, e.g. "es". Required.
	TargetLang string

	// SourceLang is the spoken language of the input. Empty lets the
	// provider detect it.
	SourceLang string

	// Name labels the dubbing project.
	Name string

	// NumSpeakers hints how many speakers the input has. Zero lets
	// the provider detect it.
	NumSpeakers int
}

func (d *DubRequest) validate() error {
	if d.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}
	switch {
	case d.FilePath == "" && d.SourceURL == "":
		return fmt.Errorf("either FilePath or SourceURL is required")
	case d.FilePath != "" && d.SourceURL != "":
		return fmt.Errorf("FilePath and SourceURL are mutually exclusive")
	}
	return nil
}

// DubAdapter returns the adapter for POST /v1/dubbing. Dubbed tracks
// live behind the API key, so artifact downloads are authenticated.
func DubAdapter(apiKey string, opts ...Option) *remotejob.Adapter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	base := strings.TrimRight(cfg.baseURL, "/")

	return &remotejob.Adapter{
		Name:       "elevenlabs",
		Credential: remotejob.HeaderKey("xi-api-key", apiKey),
		NewSubmitRequest: func(ctx context.Context, payload any) (*http.Request, error) {
			d, err := asDubRequest(payload)
			if err != nil {
				return nil, err
			}
			return newDubUpload(ctx, base, d)
		},
		ParseSubmit: func(body []byte) (string, error) {
			var d struct {
				DubbingID string `json:"dubbing_id"`
			}
			if err := json.Unmarshal(body, &d); err != nil {
				return "", fmt.Errorf("decode dubbing response: %w", err)
			}
			if d.DubbingID == "" {
				return "", fmt.Errorf("response has no dubbing_id")
			}
			return d.DubbingID, nil
		},
		StatusURL: func(id string) string {
			return base + "/v1/dubbing/" + id
		},
		ParseStatus: func(body []byte) (string, error) {
			d, err := ParseDubbing(body)
			if err != nil {
				return "", err
			}
			if d.Status == "" {
				return "", fmt.Errorf("response has no status")
			}
			return d.Status, nil
		},
		StatusMap: map[string]remotejob.State{
			"dubbing": remotejob.StateRunning,
			"dubbed":  remotejob.StateSucceeded,
			"failed":  remotejob.StateFailed,
		},
		FailureMessage: func(body []byte) string {
			d, err := ParseDubbing(body)
			if err != nil {
				return ""
			}
			return d.Error
		},
		Artifacts: func(body []byte) ([]string, error) {
			d, err := ParseDubbing(body)
			if err != nil {
				return nil, err
			}
			if d.DubbingID == "" {
				return nil, fmt.Errorf("status has no dubbing_id")
			}
			urls := make([]string, 0, len(d.TargetLanguages))
			for _, lang := range d.TargetLanguages {
				urls = append(urls, base+"/v1/dubbing/"+d.DubbingID+"/audio/"+lang)
			}
			return urls, nil
		},
		PollInterval:    cfg.pollInterval,
		MaxWait:         cfg.maxWait,
		DownloadAuth:    true,
		DownloadTimeout: DefaultDownloadTimeout,
	}
}

func asDubRequest(payload any) (*DubRequest, error) {
	switch d := payload.(type) {
	case *DubRequest:
		return d, nil
	case DubRequest:
		return &d, nil
	default:
		return nil, fmt.Errorf("payload must be *elevenlabs.DubRequest, got %T", payload)
	}
}

// newDubUpload builds the multipart submission. The form is streamed
// through a pipe so the media file is never held in memory.
func newDubUpload(ctx context.Context, base string, d *DubRequest) (*http.Request, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	var file *os.File
	if d.FilePath != "" {
		f, err := os.Open(d.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open media: %w", err)
		}
		file = f
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeDubForm(writer, file, d)
		if file != nil {
			file.Close()
		}
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/dubbing", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, `\"`)

func writeDubForm(w *multipart.Writer, file *os.File, d *DubRequest) error {
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
			quoteEscaper.Replace(filepath.Base(file.Name()))))
		h.Set("Content-Type", mediaMIMEType(file.Name()))
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("copy media: %w", err)
		}
	}

	fields := [][2]string{{"target_lang", d.TargetLang}}
	if d.SourceURL != "" {
		fields = append(fields, [2]string{"source_url", d.SourceURL})
	}
	if d.SourceLang != "" {
		fields = append(fields, [2]string{"source_lang", d.SourceLang})
	}
	if d.Name != "" {
		fields = append(fields, [2]string{"name", d.Name})
	}
	if d.NumSpeakers > 0 {
		fields = append(fields, [2]string{"num_speakers", strconv.Itoa(d.NumSpeakers)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	return nil
}

// mediaMIMEType maps a media file extension to its MIME type.
func mediaMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	default:
		return "video/mp4"
	}
}

// Dubbing is the provider's view of a dubbing project.
type Dubbing struct {
	DubbingID       string   `json:"dubbing_id"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	TargetLanguages []string `json:"target_languages"`
	Error           string   `json:"error"`
}

// ParseDubbing decodes a dubbing status body.
func ParseDubbing(body []byte) (*Dubbing, error) {
	var d Dubbing
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("decode dubbing status: %w", err)
	}
	return &d, nil
}
