package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

// Stock voice IDs.
const (
	VoiceRachel = "21m00Tcm4TlvDq8ikWAM"
	VoiceAdam   = "pNInz6obpgDQGcFmaJgB"
	VoiceBella  = "EXAVITQu4vr4xnSDxMaL"
	VoiceAntoni = "ErXwobaYiN019PkySvjV"
	VoiceElli   = "MF3mGyEYCl7XYWbV9V6O"
	VoiceJosh   = "TxGEqnHWrfWFTfGW9XjX"
)

const (
	// DefaultVoice is used when a SpeechRequest names no voice.
	DefaultVoice = VoiceBella

	// DefaultSpeechModel is used when a SpeechRequest names no model.
	DefaultSpeechModel = "eleven_multilingual_v2"
)

var voiceAliases = map[string]string{
	"rachel": VoiceRachel,
	"adam":   VoiceAdam,
	"bella":  VoiceBella,
	"antoni": VoiceAntoni,
	"elli":   VoiceElli,
	"josh":   VoiceJosh,
}

// ResolveVoice maps a stock voice name like "bella" to its voice ID.
// Anything that is not a known name is returned unchanged, so raw
// voice IDs pass through.
func ResolveVoice(name string) string {
	if id, ok := voiceAliases[strings.ToLower(name)]; ok {
		return id
	}
	return name
}

// Client calls the synchronous ElevenLabs endpoints. Both calls answer
// with raw audio bytes, mp3 by default.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	cfg := defaultConfig()
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

// SpeechRequest is the payload for text-to-speech generation.
type SpeechRequest struct {
	// Text is the text to speak. Required.
	Text string

	// VoiceID selects the voice, by ID or stock name. Empty means
	// DefaultVoice.
	VoiceID string

	// Model selects the TTS model. Empty means DefaultSpeechModel.
	Model string

	// Stability steers delivery consistency, 0 to 1. Zero means the
	// provider default of 0.5.
	Stability float64

	// Similarity steers voice likeness, 0 to 1. Zero means the
	// provider default of 0.75.
	Similarity float64
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// TextToSpeech generates speech for req and returns the audio bytes.
func (c *Client) TextToSpeech(ctx context.Context, req *SpeechRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	voice := req.VoiceID
	if voice == "" {
		voice = DefaultVoice
	} else {
		voice = ResolveVoice(voice)
	}
	model := req.Model
	if model == "" {
		model = DefaultSpeechModel
	}
	settings := voiceSettings{
		Stability:       req.Stability,
		SimilarityBoost: req.Similarity,
		UseSpeakerBoost: true,
	}
	if settings.Stability == 0 {
		settings.Stability = 0.5
	}
	if settings.SimilarityBoost == 0 {
		settings.SimilarityBoost = 0.75
	}

	payload := map[string]any{
		"text":           req.Text,
		"model_id":       model,
		"voice_settings": settings,
	}
	return c.postAudio(ctx, "/v1/text-to-speech/"+voice, payload)
}

// SoundEffectRequest is the payload for sound effect generation.
type SoundEffectRequest struct {
	// Text describes the sound, e.g. "thunder crash". Required.
	Text string

	// Duration is the target length in seconds, clamped to the
	// provider's 0.5 to 22 range. Zero lets the provider choose.
	Duration float64

	// PromptInfluence steers how literally the text is followed,
	// 0 to 1. Zero means the provider default of 0.3.
	PromptInfluence float64
}

// SoundEffect generates a sound effect for req and returns the audio
// bytes.
func (c *Client) SoundEffect(ctx context.Context, req *SoundEffectRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	influence := req.PromptInfluence
	if influence == 0 {
		influence = 0.3
	}

	payload := map[string]any{
		"text":             req.Text,
		"prompt_influence": influence,
	}
	if req.Duration > 0 {
		payload["duration_seconds"] = clampDuration(req.Duration)
	}
	return c.postAudio(ctx, "/v1/sound-generation", payload)
}

func clampDuration(d float64) float64 {
	if d < 0.5 {
		return 0.5
	}
	if d > 22 {
		return 22
	}
	return d
}

func (c *Client) postAudio(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindTransport,
			Provider: "elevenlabs",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &remotejob.Error{
			Kind:     remotejob.KindTransport,
			Provider: "elevenlabs",
			Message:  "read response",
			Err:      err,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &remotejob.Error{
			Kind:       remotejob.KindProviderRejected,
			Provider:   "elevenlabs",
			HTTPStatus: resp.StatusCode,
			Body:       body,
		}
	}
	return body, nil
}
