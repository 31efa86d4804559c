package elevenlabs

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

func readForm(t *testing.T, req *http.Request) *multipart.Form {
	t.Helper()
	mt, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		t.Fatal(err)
	}
	if mt != "multipart/form-data" {
		t.Fatalf("content type = %s", mt)
	}
	form, err := multipart.NewReader(req.Body, params["boundary"]).ReadForm(16 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form
}

func formValue(form *multipart.Form, name string) string {
	if v := form.Value[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func TestDubSubmitRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(path, []byte("fake video"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := DubAdapter("xi-key")
	req, err := a.NewSubmitRequest(context.Background(), &DubRequest{
		FilePath:    path,
		TargetLang:  "es",
		SourceLang:  "en",
		Name:        "promo",
		NumSpeakers: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("method = %s", req.Method)
	}
	if got := req.URL.String(); got != "https://api.elevenlabs.io/v1/dubbing" {
		t.Errorf("url = %s", got)
	}

	form := readForm(t, req)
	if got := formValue(form, "target_lang"); got != "es" {
		t.Errorf("target_lang = %q", got)
	}
	if got := formValue(form, "source_lang"); got != "en" {
		t.Errorf("source_lang = %q", got)
	}
	if got := formValue(form, "name"); got != "promo" {
		t.Errorf("name = %q", got)
	}
	if got := formValue(form, "num_speakers"); got != "2" {
		t.Errorf("num_speakers = %q", got)
	}

	files := form.File["file"]
	if len(files) != 1 {
		t.Fatalf("file parts = %d", len(files))
	}
	if files[0].Filename != "talk.mp4" {
		t.Errorf("filename = %q", files[0].Filename)
	}
	if got := files[0].Header.Get("Content-Type"); got != "video/mp4" {
		t.Errorf("file content type = %s", got)
	}
	f, err := files[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fake video" {
		t.Errorf("file content = %q", data)
	}
}

func TestDubSubmitRequestSourceURL(t *testing.T) {
	a := DubAdapter("xi-key")
	req, err := a.NewSubmitRequest(context.Background(), DubRequest{
		SourceURL:  "https://example.com/talk.mp4",
		TargetLang: "ko",
	})
	if err != nil {
		t.Fatal(err)
	}

	form := readForm(t, req)
	if got := formValue(form, "source_url"); got != "https://example.com/talk.mp4" {
		t.Errorf("source_url = %q", got)
	}
	if got := formValue(form, "target_lang"); got != "ko" {
		t.Errorf("target_lang = %q", got)
	}
	if len(form.File["file"]) != 0 {
		t.Error("unexpected file part")
	}
	if _, ok := form.Value["source_lang"]; ok {
		t.Error("source_lang should be omitted")
	}
	if _, ok := form.Value["num_speakers"]; ok {
		t.Error("num_speakers should be omitted")
	}
}

func TestDubRequestValidation(t *testing.T) {
	a := DubAdapter("xi-key")

	tests := []struct {
		name string
		req  DubRequest
	}{
		{"no target lang", DubRequest{FilePath: "talk.mp4"}},
		{"no input", DubRequest{TargetLang: "es"}},
		{"both inputs", DubRequest{FilePath: "talk.mp4", SourceURL: "https://example.com/a.mp4", TargetLang: "es"}},
		{"missing file", DubRequest{FilePath: filepath.Join(t.TempDir(), "nope.mp4"), TargetLang: "es"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.NewSubmitRequest(context.Background(), tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := a.NewSubmitRequest(context.Background(), "talk.mp4"); err == nil {
		t.Error("expected error for wrong payload type")
	}
}

func TestDubParseSubmit(t *testing.T) {
	a := DubAdapter("xi-key")

	id, err := a.ParseSubmit([]byte(`{"dubbing_id":"dub_123","expected_duration_sec":42}`))
	if err != nil {
		t.Fatal(err)
	}
	if id != "dub_123" {
		t.Errorf("id = %s", id)
	}

	if _, err := a.ParseSubmit([]byte(`{"detail":"oops"}`)); err == nil {
		t.Error("expected error for missing dubbing_id")
	}
	if _, err := a.ParseSubmit([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestDubStatusMap(t *testing.T) {
	a := DubAdapter("xi-key")

	want := map[string]remotejob.State{
		"dubbing": remotejob.StateRunning,
		"dubbed":  remotejob.StateSucceeded,
		"failed":  remotejob.StateFailed,
	}
	for raw, state := range want {
		if got := a.StatusMap[raw]; got != state {
			t.Errorf("StatusMap[%q] = %s, want %s", raw, got, state)
		}
	}

	// Lookups are case-sensitive and unknown values must stay unmapped.
	for _, raw := range []string{"Dubbed", "DUBBED", "done", "complete"} {
		if _, ok := a.StatusMap[raw]; ok {
			t.Errorf("StatusMap[%q] should be absent", raw)
		}
	}
}

func TestDubParseStatusAndFailure(t *testing.T) {
	a := DubAdapter("xi-key")

	raw, err := a.ParseStatus([]byte(`{"dubbing_id":"dub_1","status":"dubbing","target_languages":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if raw != "dubbing" {
		t.Errorf("status = %s", raw)
	}

	if _, err := a.ParseStatus([]byte(`{"dubbing_id":"dub_1"}`)); err == nil {
		t.Error("expected error for missing status")
	}

	msg := a.FailureMessage([]byte(`{"status":"failed","error":"no speech detected"}`))
	if msg != "no speech detected" {
		t.Errorf("failure message = %q", msg)
	}
}

func TestDubArtifacts(t *testing.T) {
	a := DubAdapter("xi-key")

	urls, err := a.Artifacts([]byte(`{"dubbing_id":"dub_1","status":"dubbed","target_languages":["es","ko"]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"https://api.elevenlabs.io/v1/dubbing/dub_1/audio/es",
		"https://api.elevenlabs.io/v1/dubbing/dub_1/audio/ko",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v", urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %s, want %s", i, urls[i], want[i])
		}
	}

	empty, err := a.Artifacts([]byte(`{"dubbing_id":"dub_1","status":"dubbed","target_languages":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("urls = %v", empty)
	}

	if _, err := a.Artifacts([]byte(`{"status":"dubbed"}`)); err == nil {
		t.Error("expected error for missing dubbing_id")
	}
}

func TestDubAdapterConfig(t *testing.T) {
	a := DubAdapter("xi-key",
		WithBaseURL("https://mirror.example.com/"),
		WithPollInterval(time.Second),
		WithMaxWait(time.Minute),
	)

	if got := a.StatusURL("dub_1"); got != "https://mirror.example.com/v1/dubbing/dub_1" {
		t.Errorf("status url = %s", got)
	}
	if a.PollInterval != time.Second {
		t.Errorf("poll interval = %s", a.PollInterval)
	}
	if a.MaxWait != time.Minute {
		t.Errorf("max wait = %s", a.MaxWait)
	}
	if !a.DownloadAuth {
		t.Error("downloads must be authenticated")
	}
	if a.DownloadTimeout != DefaultDownloadTimeout {
		t.Errorf("download timeout = %s", a.DownloadTimeout)
	}

	req, err := http.NewRequest(http.MethodGet, a.StatusURL("dub_1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Credential.Apply(req, time.Now()); err != nil {
		t.Fatal(err)
	}
	if got := req.Header.Get("xi-api-key"); got != "xi-key" {
		t.Errorf("xi-api-key = %q", got)
	}
}

func TestDubAdapterDefaults(t *testing.T) {
	a := DubAdapter("xi-key")
	if a.PollInterval != 10*time.Second {
		t.Errorf("poll interval = %s", a.PollInterval)
	}
	if a.MaxWait != 30*time.Minute {
		t.Errorf("max wait = %s", a.MaxWait)
	}
}

func TestMediaMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"talk.mp4", "video/mp4"},
		{"talk.MOV", "video/quicktime"},
		{"clip.webm", "video/webm"},
		{"pod.mp3", "audio/mpeg"},
		{"pod.wav", "audio/wav"},
		{"pod.m4a", "audio/mp4"},
		{"unknown.bin", "video/mp4"},
	}
	for _, tt := range tests {
		if got := mediaMIMEType(tt.path); got != tt.want {
			t.Errorf("mediaMIMEType(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestResolveVoice(t *testing.T) {
	if got := ResolveVoice("bella"); got != VoiceBella {
		t.Errorf("bella = %s", got)
	}
	if got := ResolveVoice("Rachel"); got != VoiceRachel {
		t.Errorf("Rachel = %s", got)
	}
	if got := ResolveVoice(VoiceJosh); got != VoiceJosh {
		t.Errorf("raw id = %s", got)
	}
	if got := ResolveVoice("custom-voice-id"); got != "custom-voice-id" {
		t.Errorf("custom id = %s", got)
	}
}
