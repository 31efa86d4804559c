package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

func TestTextToSpeech(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if got := r.Header.Get("xi-api-key"); got != "xi-key" {
			t.Errorf("xi-api-key = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "audio/mpeg" {
			t.Errorf("accept = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte("ID3 fake mp3"))
	}))
	defer srv.Close()

	c := NewClient("xi-key", WithBaseURL(srv.URL))
	audio, err := c.TextToSpeech(context.Background(), &SpeechRequest{Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if string(audio) != "ID3 fake mp3" {
		t.Errorf("audio = %q", audio)
	}

	if gotPath != "/v1/text-to-speech/"+DefaultVoice {
		t.Errorf("path = %s", gotPath)
	}
	if got := gotPayload["text"]; got != "hello" {
		t.Errorf("text = %v", got)
	}
	if got := gotPayload["model_id"]; got != DefaultSpeechModel {
		t.Errorf("model_id = %v", got)
	}

	settings, ok := gotPayload["voice_settings"].(map[string]any)
	if !ok {
		t.Fatalf("voice_settings = %v", gotPayload["voice_settings"])
	}
	if got := settings["stability"]; got != 0.5 {
		t.Errorf("stability = %v", got)
	}
	if got := settings["similarity_boost"]; got != 0.75 {
		t.Errorf("similarity_boost = %v", got)
	}
	if got := settings["use_speaker_boost"]; got != true {
		t.Errorf("use_speaker_boost = %v", got)
	}
}

func TestTextToSpeechVoiceAlias(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	c := NewClient("xi-key", WithBaseURL(srv.URL))
	if _, err := c.TextToSpeech(context.Background(), &SpeechRequest{Text: "hi", VoiceID: "adam"}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v1/text-to-speech/"+VoiceAdam {
		t.Errorf("path = %s", gotPath)
	}
}

func TestTextToSpeechRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.TextToSpeech(context.Background(), &SpeechRequest{Text: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}

	e, ok := remotejob.AsError(err)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if !e.IsProviderRejected() {
		t.Errorf("kind = %s", e.Kind)
	}
	if e.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("status = %d", e.HTTPStatus)
	}
	if string(e.Body) != `{"detail":{"status":"invalid_api_key"}}` {
		t.Errorf("body = %s", e.Body)
	}
}

func TestTextToSpeechEmptyText(t *testing.T) {
	c := NewClient("xi-key")
	if _, err := c.TextToSpeech(context.Background(), &SpeechRequest{}); err == nil {
		t.Error("expected error")
	}
}

func TestSoundEffect(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	c := NewClient("xi-key", WithBaseURL(srv.URL))

	tests := []struct {
		name     string
		duration float64
		want     any
	}{
		{"unset omits the field", 0, nil},
		{"in range", 5, 5.0},
		{"clamped low", 0.1, 0.5},
		{"clamped high", 30, 22.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPayload = nil
			_, err := c.SoundEffect(context.Background(), &SoundEffectRequest{
				Text:     "thunder crash",
				Duration: tt.duration,
			})
			if err != nil {
				t.Fatal(err)
			}

			got, present := gotPayload["duration_seconds"]
			if tt.want == nil {
				if present {
					t.Errorf("duration_seconds = %v, want absent", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("duration_seconds = %v, want %v", got, tt.want)
			}
		})
	}

	if gotPath != "/v1/sound-generation" {
		t.Errorf("path = %s", gotPath)
	}
	if got := gotPayload["text"]; got != "thunder crash" {
		t.Errorf("text = %v", got)
	}
	if got := gotPayload["prompt_influence"]; got != 0.3 {
		t.Errorf("prompt_influence = %v", got)
	}
}
