// Package filter provides ready-made selection filters. Each filter only
// looks at items whose mime type it is constrained to; everything else
// passes through.
package filter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fpang/media-picker/internal/filehandler"
	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

// constraint is the set of mime types a filter applies to. Empty means all.
type constraint []media.MimeType

func (c constraint) appliesTo(item media.Item) bool {
	return len(c) == 0 || slices.Contains(c, item.MimeType)
}

// SizeFilter rejects items larger than MaxMB megabytes. Items of unknown
// size pass.
type SizeFilter struct {
	MaxMB float64
	Types []media.MimeType
}

var _ selection.Filter = SizeFilter{}

func (f SizeFilter) Filter(ctx context.Context, item media.Item) *selection.Cause {
	if !constraint(f.Types).appliesTo(item) || item.Size <= 0 || f.MaxMB <= 0 {
		return nil
	}
	if mb := filehandler.SizeInMB(item.Size); mb > f.MaxMB {
		return selection.FilterCause(fmt.Sprintf("%s is %.1f MB, the limit is %.1f MB", item.Name(), mb, f.MaxMB))
	}
	return nil
}

// DimensionFilter rejects images smaller than MinWidth x MinHeight pixels,
// measured the way the image is displayed (EXIF rotation applied). Images
// whose bounds can't be read are rejected too.
type DimensionFilter struct {
	MinWidth  int
	MinHeight int
	Types     []media.MimeType

	Resolver selection.PathResolver

	// Bounds and Rotated default to filehandler.Bounds and filehandler.ShouldRotate.
	Bounds  func(path string) (width, height int)
	Rotated func(path string) bool
}

var _ selection.Filter = DimensionFilter{}

func (f DimensionFilter) Filter(ctx context.Context, item media.Item) *selection.Cause {
	if !item.IsImage() || !constraint(f.Types).appliesTo(item) {
		return nil
	}
	if f.MinWidth <= 0 && f.MinHeight <= 0 {
		return nil
	}
	path, ok := f.Resolver.ResolvePath(ctx, item.ID)
	if !ok {
		return nil
	}

	bounds, rotated := f.Bounds, f.Rotated
	if bounds == nil {
		bounds = filehandler.Bounds
	}
	if rotated == nil {
		rotated = filehandler.ShouldRotate
	}

	w, h := bounds(path)
	if rotated(path) {
		w, h = h, w
	}
	if w < f.MinWidth || h < f.MinHeight {
		return selection.FilterCause(fmt.Sprintf("%s is %dx%d, it must be at least %dx%d pixels",
			item.Name(), w, h, f.MinWidth, f.MinHeight)).WithDialog("Image too small")
	}
	return nil
}

// TypeFilter rejects items whose declared mime type is not in Allowed.
type TypeFilter struct {
	Allowed []media.MimeType
}

var _ selection.Filter = TypeFilter{}

func (f TypeFilter) Filter(ctx context.Context, item media.Item) *selection.Cause {
	if len(f.Allowed) == 0 || slices.Contains(f.Allowed, item.MimeType) {
		return nil
	}
	names := make([]string, len(f.Allowed))
	for i, mt := range f.Allowed {
		names[i] = string(mt)
	}
	return selection.FilterCause(fmt.Sprintf("%s is %s, only %s can be selected",
		item.Name(), item.MimeType, strings.Join(names, ", ")))
}
