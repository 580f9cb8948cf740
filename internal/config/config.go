// Package config loads the picking policy from a TOML file and turns it into
// a selection.Policy with its filters wired.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/fpang/media-picker/internal/filter"
	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

const (
	defaultConfigPath = "~/.config/media-picker/policy.toml"
	defaultStateDir   = "~/.local/state/media-picker"
	defaultLocale     = "en-US"
)

// Config is the parsed policy file.
type Config struct {
	MaxSelectable      int
	MaxImageSelectable int
	MaxVideoSelectable int
	MediaTypeExclusive bool
	MimeTypes          []media.MimeType
	Locale             string
	StateDir           string
	Filters            Filters
}

// Filters configures the built-in filters. Zero values disable a filter.
type Filters struct {
	MaxSizeMB         float64
	MinWidth          int
	MinHeight         int
	GifOnlyDimensions bool
	AllowedTypes      []media.MimeType
	MaxVideoDuration  time.Duration
}

type rawConfig struct {
	MaxSelectable      *int     `toml:"max_selectable"`
	MaxImageSelectable int      `toml:"max_image_selectable"`
	MaxVideoSelectable int      `toml:"max_video_selectable"`
	MediaTypeExclusive *bool    `toml:"media_type_exclusive"`
	MimeTypes          []string `toml:"mime_types"`
	Locale             string   `toml:"locale"`
	StateDir           string   `toml:"state_dir"`
	Filters            struct {
		MaxSizeMB         float64  `toml:"max_size_mb"`
		MinWidth          int      `toml:"min_width"`
		MinHeight         int      `toml:"min_height"`
		GifOnlyDimensions bool     `toml:"gif_only_dimensions"`
		AllowedTypes      []string `toml:"allowed_types"`
		MaxVideoSeconds   float64  `toml:"max_video_seconds"`
	} `toml:"filters"`
}

// Default returns the policy used when no file exists: one item of any known
// type, images and videos never mixed.
func Default() Config {
	return Config{
		MaxSelectable:      1,
		MediaTypeExclusive: true,
		Locale:             defaultLocale,
		StateDir:           mustExpand(defaultStateDir),
	}
}

// Load reads the policy file at path (or the default location when path is
// empty), falling back to Default when the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML policy document.
func Parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	cfg.MaxImageSelectable = raw.MaxImageSelectable
	cfg.MaxVideoSelectable = raw.MaxVideoSelectable
	switch {
	case raw.MaxSelectable != nil:
		cfg.MaxSelectable = *raw.MaxSelectable
	case raw.MaxImageSelectable > 0 || raw.MaxVideoSelectable > 0:
		// Per-type caps replace the overall default.
		cfg.MaxSelectable = 0
	}
	if raw.MediaTypeExclusive != nil {
		cfg.MediaTypeExclusive = *raw.MediaTypeExclusive
	}

	var err error
	if cfg.MimeTypes, err = parseMimeTypes(raw.MimeTypes); err != nil {
		return Config{}, fmt.Errorf("mime_types: %w", err)
	}
	if cfg.Filters.AllowedTypes, err = parseMimeTypes(raw.Filters.AllowedTypes); err != nil {
		return Config{}, fmt.Errorf("filters.allowed_types: %w", err)
	}

	if locale := strings.TrimSpace(raw.Locale); locale != "" {
		cfg.Locale = locale
	}
	if dir := strings.TrimSpace(raw.StateDir); dir != "" {
		if cfg.StateDir, err = expandPath(dir); err != nil {
			return Config{}, fmt.Errorf("state_dir: %w", err)
		}
	}

	cfg.Filters.MaxSizeMB = raw.Filters.MaxSizeMB
	cfg.Filters.MinWidth = raw.Filters.MinWidth
	cfg.Filters.MinHeight = raw.Filters.MinHeight
	cfg.Filters.GifOnlyDimensions = raw.Filters.GifOnlyDimensions
	cfg.Filters.MaxVideoDuration = time.Duration(raw.Filters.MaxVideoSeconds * float64(time.Second))

	return cfg, nil
}

// Policy builds the selection policy. resolver is used by filters that need
// to read the file behind an item.
func (c Config) Policy(resolver selection.PathResolver) (selection.Policy, error) {
	p := selection.Policy{
		MaxSelectable:      c.MaxSelectable,
		MaxImageSelectable: c.MaxImageSelectable,
		MaxVideoSelectable: c.MaxVideoSelectable,
		MediaTypeExclusive: c.MediaTypeExclusive,
		MimeTypes:          c.MimeTypes,
		Messages:           selection.MessagesFor(c.Locale),
	}

	if len(c.Filters.AllowedTypes) > 0 {
		p.Filters = append(p.Filters, filter.TypeFilter{Allowed: c.Filters.AllowedTypes})
	}
	if c.Filters.MaxSizeMB > 0 {
		p.Filters = append(p.Filters, filter.SizeFilter{MaxMB: c.Filters.MaxSizeMB})
	}
	if c.Filters.MinWidth > 0 || c.Filters.MinHeight > 0 {
		df := filter.DimensionFilter{
			MinWidth:  c.Filters.MinWidth,
			MinHeight: c.Filters.MinHeight,
			Resolver:  resolver,
		}
		if c.Filters.GifOnlyDimensions {
			df.Types = []media.MimeType{media.GIF}
		}
		p.Filters = append(p.Filters, df)
	}
	if c.Filters.MaxVideoDuration > 0 {
		p.Filters = append(p.Filters, maxVideoDuration(c.Filters.MaxVideoDuration))
	}

	if err := p.Validate(); err != nil {
		return selection.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// maxVideoDuration vetoes videos longer than limit. Items without a known
// duration pass.
func maxVideoDuration(limit time.Duration) selection.FilterFunc {
	return func(ctx context.Context, item media.Item) *selection.Cause {
		if !item.IsVideo() || item.Duration <= limit {
			return nil
		}
		return selection.FilterCause(fmt.Sprintf("%s is %s long, videos can be at most %s",
			item.Name(), item.Duration.Round(time.Second), limit))
	}
}

func parseMimeTypes(names []string) ([]media.MimeType, error) {
	var out []media.MimeType
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		mt, err := media.Parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
