// Package selection tracks which media items a user has picked and enforces
// the picking policy: how many items of each kind may be selected, whether
// images and videos may be mixed, and which items are acceptable at all.
//
// A Store is owned by a single picking session and is not safe for
// concurrent use. The Policy it is built with is read-only for the lifetime
// of the session.
package selection

import (
	"context"
	"fmt"

	"github.com/fpang/media-picker/internal/media"
)

// Filter vetoes items for reasons outside the built-in rules (size, dimensions, ...).
// A nil return accepts the item.
type Filter interface {
	Filter(ctx context.Context, item media.Item) *Cause
}

// FilterFunc adapts an ordinary function to the Filter interface.
type FilterFunc func(ctx context.Context, item media.Item) *Cause

// Filter calls f(ctx, item).
func (f FilterFunc) Filter(ctx context.Context, item media.Item) *Cause {
	return f(ctx, item)
}

// CauseProvider overrides the over-count messages. A returned error makes the
// store fall back to the generic over-count message.
type CauseProvider interface {
	CauseFor(reach Reach) (string, error)
}

// Policy configures one picking session.
//
// When both MaxImageSelectable and MaxVideoSelectable are positive the store
// counts images and videos separately and MaxSelectable is ignored.
type Policy struct {
	MaxSelectable      int
	MaxImageSelectable int
	MaxVideoSelectable int

	// MediaTypeExclusive forbids images and videos in the same selection.
	MediaTypeExclusive bool

	// MimeTypes is the accepted set. Empty accepts every known type.
	MimeTypes []media.MimeType

	// Filters run in order after the format checks; the first veto wins.
	Filters []Filter

	Causes   CauseProvider
	Messages *Messages
}

// DefaultPolicy returns the picker defaults: a single item of any known type,
// images and videos never mixed.
func DefaultPolicy() Policy {
	return Policy{
		MaxSelectable:      1,
		MediaTypeExclusive: true,
		MimeTypes:          media.OfAll(),
		Messages:           DefaultMessages(),
	}
}

// Validate rejects policies no session could run with.
func (p Policy) Validate() error {
	if p.MaxSelectable < 0 || p.MaxImageSelectable < 0 || p.MaxVideoSelectable < 0 {
		return fmt.Errorf("max selectable counts must not be negative (total=%d image=%d video=%d)",
			p.MaxSelectable, p.MaxImageSelectable, p.MaxVideoSelectable)
	}
	if p.MaxSelectable == 0 && p.MaxImageSelectable == 0 && p.MaxVideoSelectable == 0 {
		return fmt.Errorf("at least one of max_selectable, max_image_selectable, max_video_selectable must be positive")
	}
	for _, mt := range p.MimeTypes {
		if !mt.Known() {
			return fmt.Errorf("mime type %q: %w", mt, media.ErrUnknownMimeType)
		}
	}
	return nil
}

// AcceptedTypes returns the configured mime types, or every known type when none are set.
func (p Policy) AcceptedTypes() []media.MimeType {
	if len(p.MimeTypes) == 0 {
		return media.OfAll()
	}
	return p.MimeTypes
}

// DualLimit reports whether the policy caps images and videos separately.
func (p Policy) DualLimit() bool {
	return p.MaxImageSelectable > 0 && p.MaxVideoSelectable > 0
}

// SingleSelectionMode reports whether picking one item should replace the
// previous one instead of adding to it.
func (p Policy) SingleSelectionMode() bool {
	return p.MaxSelectable == 1 || (p.MaxImageSelectable == 1 && p.MaxVideoSelectable == 1)
}

// OnlyImages reports whether every accepted type is an image type.
func (p Policy) OnlyImages() bool {
	return allOfKind(p.AcceptedTypes(), media.KindImage)
}

// OnlyVideos reports whether every accepted type is a video type.
func (p Policy) OnlyVideos() bool {
	return allOfKind(p.AcceptedTypes(), media.KindVideo)
}

func allOfKind(types []media.MimeType, k media.Kind) bool {
	for _, mt := range types {
		if mt.Kind() != k {
			return false
		}
	}
	return len(types) > 0
}

func (p Policy) messages() *Messages {
	if p.Messages == nil {
		return DefaultMessages()
	}
	return p.Messages
}
