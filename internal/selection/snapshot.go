package selection

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/media"
)

// Snapshot is the saved form of a selection: the items in order plus the
// collection type at save time.
type Snapshot struct {
	Items          []SnapshotItem `json:"items" dynamodbav:"items"`
	CollectionType CollectionType `json:"collectionType" dynamodbav:"collectionType"`
}

// SnapshotItem is the saved form of a media.Item.
type SnapshotItem struct {
	ID         string `json:"id" dynamodbav:"id"`
	MimeType   string `json:"mimeType" dynamodbav:"mimeType"`
	Size       int64  `json:"size,omitempty" dynamodbav:"size,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty" dynamodbav:"durationMs,omitempty"`
}

// Snapshot captures the current selection.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Items:          make([]SnapshotItem, 0, len(s.items)),
		CollectionType: s.collectionType,
	}
	for _, it := range s.items {
		snap.Items = append(snap.Items, SnapshotItem{
			ID:         it.ID,
			MimeType:   string(it.MimeType),
			Size:       it.Size,
			DurationMs: it.Duration.Milliseconds(),
		})
	}
	return snap
}

// Restore replaces the selection with a saved one. The stored collection type
// is not trusted: it is re-derived from the restored items.
func (s *Store) Restore(snap Snapshot) {
	s.reset()
	for _, si := range snap.Items {
		s.insert(media.NewItem(si.ID, media.MimeType(si.MimeType), si.Size, time.Duration(si.DurationMs)*time.Millisecond))
	}
	s.collectionType = snap.CollectionType
	s.refineCollectionType()

	if s.collectionType != snap.CollectionType {
		log.Warn().
			Str("stored", snap.CollectionType.String()).
			Str("derived", s.collectionType.String()).
			Msg("Restored collection type did not match its items, using derived type")
	}
}

// PathResolver maps an item identifier to a local or remote path.
type PathResolver interface {
	ResolvePath(ctx context.Context, id string) (string, bool)
}

// Paths resolves every selected item, in order. Items that cannot be
// resolved are reported as "".
func (s *Store) Paths(ctx context.Context, resolver PathResolver) []string {
	paths := make([]string, len(s.items))
	for i, it := range s.items {
		if p, ok := resolver.ResolvePath(ctx, it.ID); ok {
			paths[i] = p
		}
	}
	return paths
}
