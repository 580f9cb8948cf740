// Package acceptability decides whether a single media item may be selected,
// independent of how many items are already selected. It checks that the item
// still exists, that its format is one the policy accepts, and then runs the
// policy's filters.
package acceptability

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

// FormatClassifier reports whether the content behind id is of type mt.
type FormatClassifier interface {
	MatchesType(ctx context.Context, id string, mt media.MimeType) bool
}

// deniedSuffixes are container formats the picker never accepts, whatever
// their declared type. Matching is on the raw resolved path and is
// case-sensitive.
var deniedSuffixes = []string{"3gp", "3gpp", "mkv", "webm", "ts", "avi"}

// Checker implements selection.Checker.
type Checker struct {
	resolver   selection.PathResolver
	classifier FormatClassifier
	policy     selection.Policy
}

// New returns a Checker bound to one session's policy.
func New(resolver selection.PathResolver, classifier FormatClassifier, policy selection.Policy) *Checker {
	return &Checker{
		resolver:   resolver,
		classifier: classifier,
		policy:     policy,
	}
}

var _ selection.Checker = (*Checker)(nil)

// IsAcceptable returns nil if item may be selected, otherwise the first cause
// that rejects it.
func (c *Checker) IsAcceptable(ctx context.Context, item media.Item) *selection.Cause {
	msgs := c.messages()

	path, ok := c.resolver.ResolvePath(ctx, item.ID)
	if !ok {
		log.Debug().Str("id", item.ID).Msg("Item could not be resolved")
		return selection.NewCause(selection.CauseMissingFile, msgs.MissingFile())
	}
	if !c.selectableType(ctx, item, path) {
		log.Debug().Str("id", item.ID).Str("path", path).Msg("Item format not accepted")
		return selection.NewCause(selection.CauseUnsupportedFile, msgs.UnsupportedFile())
	}

	for i, f := range c.policy.Filters {
		if cause := f.Filter(ctx, item); cause != nil {
			log.Debug().
				Str("id", item.ID).
				Int("filter", i).
				Str("cause", string(cause.Kind)).
				Msg("Item vetoed by filter")
			return cause
		}
	}
	return nil
}

func (c *Checker) selectableType(ctx context.Context, item media.Item, path string) bool {
	for _, suffix := range deniedSuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	for _, mt := range c.policy.AcceptedTypes() {
		if c.classifier.MatchesType(ctx, item.ID, mt) {
			return true
		}
	}
	return false
}

func (c *Checker) messages() *selection.Messages {
	if c.policy.Messages == nil {
		return selection.DefaultMessages()
	}
	return c.policy.Messages
}
