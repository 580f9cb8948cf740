package filehandler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/media"
)

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int

	// Limit caps the number of items returned. 0 = unlimited.
	Limit int

	// MimeTypes restricts the scan to these types. Empty = every known type.
	MimeTypes []media.MimeType
}

// ScanDirectory walks dirPath and returns every file with a known media
// extension as an Item, sorted by path.
// Symlinks to files are followed; symlinks to directories are skipped to prevent loops.
func ScanDirectory(dirPath string, opts ScanOptions) ([]media.Item, error) {
	log.Info().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Int("limit", opts.Limit).
		Msg("Scanning directory for media")

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dirPath)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseDepth := strings.Count(absPath, string(os.PathSeparator))

	allowed := make(map[media.MimeType]bool, len(opts.MimeTypes))
	for _, mt := range opts.MimeTypes {
		allowed[mt] = true
	}

	var items []media.Item
	var imageCount, videoCount int
	limitReached := false

	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if opts.MaxDepth > 0 {
			currentDepth := strings.Count(path, string(os.PathSeparator)) - baseDepth
			if d.IsDir() && currentDepth >= opts.MaxDepth {
				return fs.SkipDir
			}
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to stat symlink target, skipping")
				return nil
			}
			if target.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping symlink to directory")
				return nil
			}
		}

		if opts.Limit > 0 && len(items) >= opts.Limit {
			limitReached = true
			return fs.SkipAll
		}

		mt, err := media.ForExtension(filepath.Ext(d.Name()))
		if err != nil {
			return nil
		}
		if len(allowed) > 0 && !allowed[mt] {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			log.Warn().Err(err).Str("file", d.Name()).Msg("Failed to read file info, skipping")
			return nil
		}

		item := media.NewItem(path, mt, fi.Size(), 0)
		switch item.Kind() {
		case media.KindImage:
			imageCount++
		case media.KindVideo:
			videoCount++
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	logEvent := log.Info().
		Int("total_media", len(items)).
		Int("images", imageCount).
		Int("videos", videoCount).
		Str("directory", dirPath)
	if limitReached {
		logEvent.Bool("limit_reached", true)
	}
	logEvent.Msg("Directory media scan complete")

	return items, nil
}
