package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/haivivi/mediagen/pkg/remotejob"
)

// LocalSink writes one artifact to a file on the local filesystem.
// Data goes to a temporary file in the destination directory and is
// renamed into place only after a complete copy, so a failed download
// never leaves a partial file behind.
type LocalSink struct {
	path string
}

// Local returns a sink that writes to the named file, creating parent
// directories as needed.
func Local(path string) *LocalSink {
	return &LocalSink{path: path}
}

// Path returns the destination path.
func (s *LocalSink) Path() string { return s.path }

// Put streams r into the destination file.
func (s *LocalSink) Put(_ context.Context, r io.Reader) (int64, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), s.path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

// LocalFactory builds sinks for multi-artifact runs. Each artifact is
// named after stem with the extension taken from its locator, and
// artifacts past the first are numbered:
//
//	dir/stem.mp4, dir/stem-2.mp4, dir/stem-3.mp3, ...
//
// Stem is the base name without extension.
func LocalFactory(dir, stem string) remotejob.SinkFactory {
	base := strings.TrimSuffix(stem, filepath.Ext(stem))
	return func(index int, locator string) (remotejob.Sink, error) {
		name := base
		if index > 0 {
			name = fmt.Sprintf("%s-%d", base, index+1)
		}
		return Local(filepath.Join(dir, name+extFromLocator(locator))), nil
	}
}

var _ remotejob.Sink = (*LocalSink)(nil)
