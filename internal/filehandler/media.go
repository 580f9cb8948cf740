// Package filehandler connects the selection engine to real media files.
//
// It provides the collaborators the acceptability checker needs:
//   - LocalResolver and S3Resolver map item IDs to paths and report absence
//   - ContentClassifier decides an item's format from its leading bytes
//
// and the metadata helpers the picker UI uses (Bounds, ShouldRotate,
// BitmapSize, SizeInMB).
package filehandler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

const fileScheme = "file://"

// LocalResolver resolves item IDs that are filesystem paths or file:// URIs.
// Relative paths are taken relative to Root when it is set.
type LocalResolver struct {
	Root string
}

var _ selection.PathResolver = LocalResolver{}

// ResolvePath returns the cleaned path for id if a regular file exists there.
func (r LocalResolver) ResolvePath(ctx context.Context, id string) (string, bool) {
	path := strings.TrimPrefix(id, fileScheme)
	if path == "" {
		return "", false
	}
	if !filepath.IsAbs(path) && r.Root != "" {
		path = filepath.Join(r.Root, path)
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("id", id).Str("path", path).Msg("Media file not found")
		} else {
			log.Warn().Err(err).Str("id", id).Str("path", path).Msg("Failed to stat media file")
		}
		return "", false
	}
	if info.IsDir() {
		log.Debug().Str("id", id).Str("path", path).Msg("Media path is a directory")
		return "", false
	}
	return path, true
}

// ContentClassifier decides an item's format from the file's magic bytes,
// falling back to the extension when the content is not recognized.
type ContentClassifier struct {
	resolver selection.PathResolver

	mu       sync.Mutex
	detected map[string]media.MimeType
}

// NewContentClassifier returns a classifier that opens files found by resolver.
func NewContentClassifier(resolver selection.PathResolver) *ContentClassifier {
	return &ContentClassifier{
		resolver: resolver,
		detected: make(map[string]media.MimeType),
	}
}

// MatchesType reports whether the content behind id is of type mt.
func (c *ContentClassifier) MatchesType(ctx context.Context, id string, mt media.MimeType) bool {
	path, ok := c.resolver.ResolvePath(ctx, id)
	if !ok {
		return false
	}
	if detected := c.detect(path); detected != "" {
		return detected == mt
	}
	return mt.MatchesPath(path)
}

// detect classifies path once and remembers the answer; callers ask once per
// accepted type.
func (c *ContentClassifier) detect(path string) media.MimeType {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mt, ok := c.detected[path]; ok {
		return mt
	}
	mt, err := media.DetectFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to read media header")
	}
	c.detected[path] = mt
	return mt
}
