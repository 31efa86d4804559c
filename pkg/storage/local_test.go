package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "a", "b", "clip.mp4")
	sink := Local(dest)
	ctx := context.Background()

	const data = "fake video bytes"
	n, err := sink.Put(ctx, strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(data)) {
		t.Fatalf("n = %d, want %d", n, len(data))
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != data {
		t.Fatalf("got %q, want %q", got, data)
	}
	if sink.Path() != dest {
		t.Fatalf("Path() = %q, want %q", sink.Path(), dest)
	}
}

func TestLocalPutAtomic(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.png")
	sink := Local(dest)
	ctx := context.Background()

	// A reader that fails mid-stream must leave no trace: no partial
	// destination file and no leftover temp file.
	broken := io.MultiReader(strings.NewReader("partial"), &failReader{err: errors.New("connection reset")})
	if _, err := sink.Put(ctx, broken); err == nil {
		t.Fatal("expected error from failing reader")
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("destination should not exist, stat err = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("directory should be empty, found %v", entries)
	}
}

func TestLocalPutOverwrite(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "f.bin")
	ctx := context.Background()

	if err := os.WriteFile(dest, []byte("old much longer content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Local(dest).Put(ctx, strings.NewReader("new")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("got %q, want %q", got, "new")
	}
}

func TestLocalPutOverwriteKeepsOldOnFailure(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "keep.mp3")
	ctx := context.Background()

	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Local(dest).Put(ctx, &failReader{err: errors.New("boom")}); err == nil {
		t.Fatal("expected error")
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Fatalf("got %q, want %q", got, "original")
	}
}

func TestLocalFactory(t *testing.T) {
	dir := t.TempDir()
	factory := LocalFactory(dir, "song")
	ctx := context.Background()

	tests := []struct {
		index   int
		locator string
		want    string
	}{
		{0, "https://cdn.example.com/v/result.mp4?sig=abc", "song.mp4"},
		{1, "https://cdn.example.com/v/result.mp4?sig=abc", "song-2.mp4"},
		{2, "https://api.example.com/v1/dubbing/d1/audio/es", "song-3.bin"},
		{0, "data:image/png;base64,aGk=", "song.png"},
	}
	for _, tt := range tests {
		sink, err := factory(tt.index, tt.locator)
		if err != nil {
			t.Fatal(err)
		}
		ls, ok := sink.(*LocalSink)
		if !ok {
			t.Fatalf("sink type = %T", sink)
		}
		want := filepath.Join(dir, tt.want)
		if ls.Path() != want {
			t.Fatalf("factory(%d, %q) path = %q, want %q", tt.index, tt.locator, ls.Path(), want)
		}
		if _, err := sink.Put(ctx, strings.NewReader("x")); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocalFactoryTrimsStemExtension(t *testing.T) {
	factory := LocalFactory("out", "clip.mp4")
	sink, err := factory(0, "https://cdn.example.com/a.webm")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("out", "clip.webm")
	if got := sink.(*LocalSink).Path(); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}

func TestExtFromLocator(t *testing.T) {
	tests := []struct {
		locator string
		want    string
	}{
		{"https://cdn.example.com/a/b/video.mp4", ".mp4"},
		{"https://cdn.example.com/a/b/video.mp4?X-Amz-Signature=deadbeef", ".mp4"},
		{"https://cdn.example.com/a/b/img.PNG", ".PNG"},
		{"https://api.example.com/v1/dubbing/d1/audio/es", ".bin"},
		{"https://cdn.example.com/file.verylongext", ".bin"},
		{"data:audio/mpeg;base64,aGk=", ".mp3"},
		{"data:image/jpeg,raw", ".jpg"},
		{"data:application/x-thing;base64,aGk=", ".bin"},
	}
	for _, tt := range tests {
		if got := extFromLocator(tt.locator); got != tt.want {
			t.Fatalf("extFromLocator(%q) = %q, want %q", tt.locator, got, tt.want)
		}
	}
}

func TestContentTypeByExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"clip.mp4", "video/mp4"},
		{"Song.MP3", "audio/mpeg"},
		{"pic.jpeg", "image/jpeg"},
		{"meta.json", "application/json"},
		{"unknown.zzz", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := contentTypeByExt(tt.name); got != tt.want {
			t.Fatalf("contentTypeByExt(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// failReader fails every read with a fixed error.
type failReader struct{ err error }

func (r *failReader) Read([]byte) (int, error) { return 0, r.err }
