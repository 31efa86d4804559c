// Package storage delivers generated artifacts. It provides sinks for
// the local filesystem and S3-compatible object stores, and staging
// uploads that turn local input files into fetchable URLs for
// providers that only accept remote media.
//
// Every sink is atomic: a failed write leaves the destination exactly
// as it was, a successful write leaves exactly the artifact bytes.
package storage

import (
	"path"
	"strings"
)

// contentTypeByExt maps a file extension to the content type recorded
// on uploaded objects.
func contentTypeByExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// extFromLocator pulls a usable file extension out of an artifact
// locator, ignoring query strings. Inline data: locators derive the
// extension from their media type. Locators without one get ".bin".
func extFromLocator(locator string) string {
	if rest, ok := strings.CutPrefix(locator, "data:"); ok {
		if i := strings.IndexAny(rest, ";,"); i >= 0 {
			rest = rest[:i]
		}
		return extByContentType(rest)
	}
	s := locator
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if ext := path.Ext(path.Base(s)); ext != "" && len(ext) <= 6 {
		return ext
	}
	return ".bin"
}

// extByContentType is the reverse of contentTypeByExt for the media
// types providers actually return.
func extByContentType(ct string) string {
	switch strings.ToLower(ct) {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "application/json":
		return ".json"
	default:
		return ".bin"
	}
}
