package kling

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

func TestTextToVideoSubmitRequest(t *testing.T) {
	a := TextToVideoAdapter("access:secret")

	req, err := a.NewSubmitRequest(context.Background(), &TextToVideoRequest{
		Model:    ModelV1,
		Prompt:   "a red fox",
		Mode:     ModePro,
		Duration: "5",
	})
	if err != nil {
		t.Fatal(err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("method = %s", req.Method)
	}
	if got := req.URL.String(); got != "https://api.klingai.com/v1/videos/text2video" {
		t.Errorf("url = %s", got)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	body, _ := io.ReadAll(req.Body)
	var sent map[string]any
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatal(err)
	}
	if sent["model_name"] != ModelV1 || sent["prompt"] != "a red fox" || sent["mode"] != "pro" {
		t.Errorf("payload = %s", body)
	}
	if _, ok := sent["negative_prompt"]; ok {
		t.Error("empty fields should be omitted")
	}
}

func TestAdapterOptions(t *testing.T) {
	a := ImageToVideoAdapter("access:secret",
		WithBaseURL("https://mirror.example.com/"),
		WithPollInterval(time.Second),
		WithMaxWait(time.Minute),
	)

	if got := a.StatusURL("task-9"); got != "https://mirror.example.com/v1/videos/image2video/task-9" {
		t.Errorf("status url = %s", got)
	}
	if a.PollInterval != time.Second || a.MaxWait != time.Minute {
		t.Errorf("cadence = %v/%v", a.PollInterval, a.MaxWait)
	}
}

func TestParseSubmit(t *testing.T) {
	a := TextToVideoAdapter("access:secret")

	id, err := a.ParseSubmit([]byte(`{"code":0,"message":"ok","data":{"task_id":"abc123"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if id != "abc123" {
		t.Errorf("task id = %q", id)
	}
}

func TestParseSubmitEnvelopeRejection(t *testing.T) {
	a := TextToVideoAdapter("access:secret")

	_, err := a.ParseSubmit([]byte(`{"code":1102,"message":"account balance not enough","data":null}`))
	e, ok := remotejob.AsError(err)
	if !ok || !e.IsProviderRejected() {
		t.Fatalf("non-zero envelope code must reject, got %v", err)
	}
	if e.Message != "account balance not enough (code=1102)" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestParseSubmitMissingTaskID(t *testing.T) {
	a := TextToVideoAdapter("access:secret")
	if _, err := a.ParseSubmit([]byte(`{"code":0,"data":{}}`)); err == nil {
		t.Fatal("expected error for missing task_id")
	}
}

func TestStatusMapSpellings(t *testing.T) {
	a := TextToVideoAdapter("access:secret")

	tests := []struct {
		raw  string
		want remotejob.State
	}{
		{"submitted", remotejob.StatePending},
		{"processing", remotejob.StateRunning},
		{"succeed", remotejob.StateSucceeded},
		{"failed", remotejob.StateFailed},
	}
	for _, tt := range tests {
		if got := a.StatusMap[tt.raw]; got != tt.want {
			t.Errorf("StatusMap[%q] = %q, want %q", tt.raw, got, tt.want)
		}
	}

	// Kling spells success "succeed"; other spellings must stay
	// unmapped so they can never terminate a job.
	for _, raw := range []string{"succeeded", "Succeed", "SUCCEED", "success"} {
		if _, ok := a.StatusMap[raw]; ok {
			t.Errorf("StatusMap must not contain %q", raw)
		}
	}
}

func TestParseStatusAndFailure(t *testing.T) {
	a := TextToVideoAdapter("access:secret")
	body := []byte(`{"code":0,"data":{"task_id":"t1","task_status":"failed","task_status_msg":"prompt blocked by moderation"}}`)

	raw, err := a.ParseStatus(body)
	if err != nil {
		t.Fatal(err)
	}
	if raw != "failed" {
		t.Errorf("raw status = %q", raw)
	}
	if msg := a.FailureMessage(body); msg != "prompt blocked by moderation" {
		t.Errorf("failure message = %q", msg)
	}
}

func TestArtifacts(t *testing.T) {
	a := TextToVideoAdapter("access:secret")
	body := []byte(`{"code":0,"data":{
		"task_id":"t1",
		"task_status":"succeed",
		"task_result":{"videos":[
			{"id":"v1","url":"https://cdn.kling.test/v1.mp4","duration":"5"},
			{"id":"v2","url":"https://cdn.kling.test/v2.mp4","duration":"5"}
		]}
	}}`)

	urls, err := a.Artifacts(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 || urls[0] != "https://cdn.kling.test/v1.mp4" {
		t.Errorf("urls = %v", urls)
	}
}

func TestArtifactsEmpty(t *testing.T) {
	a := TextToVideoAdapter("access:secret")

	urls, err := a.Artifacts([]byte(`{"code":0,"data":{"task_id":"t1","task_status":"succeed"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 0 {
		t.Errorf("urls = %v, want none", urls)
	}
}

func TestParseResult(t *testing.T) {
	body := []byte(`{"code":0,"data":{
		"task_id":"t1",
		"task_status":"succeed",
		"task_result":{"videos":[{"id":"v1","url":"https://cdn.kling.test/v1.mp4","duration":"10"}]}
	}}`)

	res, err := ParseResult(body)
	if err != nil {
		t.Fatal(err)
	}
	if res.TaskID != "t1" || len(res.Videos) != 1 || res.Videos[0].Duration != "10" {
		t.Errorf("result = %+v", res)
	}
}

func TestImageFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ImageFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "iVBORw==" {
		t.Errorf("base64 = %q", got)
	}

	if _, err := ImageFromFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
