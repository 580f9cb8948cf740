package selection

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/media"
)

// Unchecked is returned by CheckedNumOf for items that are not selected.
const Unchecked = math.MinInt32

// CollectionType classifies the current selection. Image and Video are bit
// flags; Mixed is their union.
type CollectionType int

const (
	CollectionUndefined CollectionType = 0x00
	CollectionImage     CollectionType = 0x01
	CollectionVideo     CollectionType = 0x01 << 1
	CollectionMixed     CollectionType = CollectionImage | CollectionVideo
)

func (t CollectionType) String() string {
	switch t {
	case CollectionImage:
		return "image"
	case CollectionVideo:
		return "video"
	case CollectionMixed:
		return "mixed"
	default:
		return "undefined"
	}
}

// ErrTypeConflict is returned by Add when the item would mix images and
// videos under an exclusive policy. Callers are expected to have checked
// IsAcceptable first, so seeing this error is a bug in the caller.
var ErrTypeConflict = errors.New("can't select images and videos at the same time")

// ErrUnsupportedKind is returned by Add for items that are neither images
// nor videos.
var ErrUnsupportedKind = errors.New("only images and videos can be selected")

// TypeConflictError carries the details of an ErrTypeConflict.
type TypeConflictError struct {
	ID             string
	Kind           media.Kind
	CollectionType CollectionType
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("add %s (%s) to %s selection: %v", e.ID, e.Kind, e.CollectionType, ErrTypeConflict)
}

func (e *TypeConflictError) Unwrap() error {
	return ErrTypeConflict
}

// Checker runs the per-item acceptability checks that sit behind the limit
// rules: existence, format and custom filters.
type Checker interface {
	IsAcceptable(ctx context.Context, item media.Item) *Cause
}

// Store is the ordered, duplicate-free set of selected items plus its
// collection type. The type is updated inside every mutating call so the two
// never disagree.
type Store struct {
	policy  Policy
	checker Checker

	items          []media.Item
	members        map[string]struct{}
	collectionType CollectionType
}

// NewStore returns an empty store. checker may be nil, in which case only the
// limit and type-conflict rules apply.
func NewStore(policy Policy, checker Checker) *Store {
	return &Store{
		policy:  policy,
		checker: checker,
		members: make(map[string]struct{}),
	}
}

// Policy returns the policy the store was built with.
func (s *Store) Policy() Policy {
	return s.policy
}

// SetDefaultSelection adds pre-selected items, skipping duplicates, and
// derives the collection type from the resulting membership. No limits or
// type rules are applied.
func (s *Store) SetDefaultSelection(items []media.Item) {
	for _, item := range items {
		s.insert(item)
	}
	s.refineCollectionType()
}

// Add selects item. It returns false if the item was already selected,
// ErrUnsupportedKind for items of unknown kind and ErrTypeConflict if the
// policy forbids mixing with the current selection.
func (s *Store) Add(item media.Item) (bool, error) {
	if item.Kind() == media.KindUnknown {
		return false, fmt.Errorf("add %s (%s): %w", item.ID, item.MimeType, ErrUnsupportedKind)
	}
	if s.TypeConflict(item) {
		return false, &TypeConflictError{ID: item.ID, Kind: item.Kind(), CollectionType: s.collectionType}
	}
	if !s.insert(item) {
		return false, nil
	}

	switch s.collectionType {
	case CollectionUndefined:
		if item.IsImage() {
			s.collectionType = CollectionImage
		} else if item.IsVideo() {
			s.collectionType = CollectionVideo
		}
	case CollectionImage:
		if item.IsVideo() {
			s.collectionType = CollectionMixed
		}
	case CollectionVideo:
		if item.IsImage() {
			s.collectionType = CollectionMixed
		}
	}

	log.Debug().
		Str("id", item.ID).
		Str("kind", item.Kind().String()).
		Int("count", len(s.items)).
		Str("collection_type", s.collectionType.String()).
		Msg("Item selected")
	return true, nil
}

// MustAdd is Add for callers that already consulted IsAcceptable. It panics
// on any error.
func (s *Store) MustAdd(item media.Item) bool {
	added, err := s.Add(item)
	if err != nil {
		panic(err)
	}
	return added
}

// Remove deselects item and reports whether it was selected.
func (s *Store) Remove(item media.Item) bool {
	if _, ok := s.members[item.ID]; !ok {
		return false
	}
	delete(s.members, item.ID)
	for i, it := range s.items {
		if it.ID == item.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}

	if len(s.items) == 0 {
		s.collectionType = CollectionUndefined
	} else if s.collectionType == CollectionMixed {
		// Removing one item of a single-kind selection can't change its type.
		s.refineCollectionType()
	}

	log.Debug().
		Str("id", item.ID).
		Int("count", len(s.items)).
		Str("collection_type", s.collectionType.String()).
		Msg("Item deselected")
	return true
}

// Overwrite replaces the selection wholesale with a previously validated one.
// The caller's collection type is trusted unless items is empty.
func (s *Store) Overwrite(items []media.Item, collectionType CollectionType) {
	s.reset()
	for _, item := range items {
		s.insert(item)
	}
	if len(s.items) == 0 {
		s.collectionType = CollectionUndefined
	} else {
		s.collectionType = collectionType
	}
}

// Clear empties the selection.
func (s *Store) Clear() {
	s.reset()
	s.collectionType = CollectionUndefined
}

// IsAcceptable reports why item cannot be added, or nil if it can.
// Limits are checked first, then type mixing, then the checker.
func (s *Store) IsAcceptable(ctx context.Context, item media.Item) *Cause {
	if reach := s.MaxSelectableReached(item); reach != NotReach {
		return NewCause(reach.causeKind(), s.overCountMessage(reach))
	}
	if s.TypeConflict(item) {
		return NewCause(CauseTypeConflict, s.policy.messages().TypeConflict())
	}
	if s.checker == nil {
		return nil
	}
	return s.checker.IsAcceptable(ctx, item)
}

func (s *Store) overCountMessage(reach Reach) string {
	maxSelectable := s.CurrentMaxSelectable()
	msgs := s.policy.messages()

	if s.policy.Causes != nil {
		text, err := s.policy.Causes.CauseFor(reach)
		if err != nil {
			log.Warn().Err(err).Str("reach", reach.String()).Msg("Cause provider failed, using default message")
			return msgs.OverCount(maxSelectable)
		}
		return text
	}

	switch reach {
	case ImageReach:
		return msgs.ImageOverCount(s.policy.MaxImageSelectable)
	case VideoReach:
		return msgs.VideoOverCount(s.policy.MaxVideoSelectable)
	default:
		return msgs.OverCount(maxSelectable)
	}
}

// MaxSelectableReached reports which limit, if any, stops item from being added.
//
// In dual-limit mode (mixed selection, or both per-type caps set) the image
// cap doubles as the combined ceiling.
func (s *Store) MaxSelectableReached(item media.Item) Reach {
	if !s.dualLimit() {
		// A zero ceiling means the policy leaves this kind uncapped.
		if limit := s.CurrentMaxSelectable(); limit > 0 && len(s.items) == limit {
			return MixReach
		}
		return NotReach
	}

	nVideo := s.SelectedVideos()
	nImage := s.SelectedImages()

	switch {
	case nVideo == s.policy.MaxVideoSelectable && item.IsVideo():
		return VideoReach
	case nImage == s.policy.MaxImageSelectable && item.IsImage():
		return ImageReach
	case nImage+nVideo == s.policy.MaxImageSelectable && (item.IsImage() || item.IsVideo()):
		return MixReach
	}
	return NotReach
}

// CurrentMaxSelectable returns the ceiling that applies to the selection as it is now.
func (s *Store) CurrentMaxSelectable() int {
	switch {
	case s.dualLimit():
		return s.mixMediaCount()
	case s.policy.MaxSelectable > 0:
		return s.policy.MaxSelectable
	case s.collectionType == CollectionImage:
		return s.policy.MaxImageSelectable
	case s.collectionType == CollectionVideo:
		return s.policy.MaxVideoSelectable
	default:
		return s.policy.MaxSelectable
	}
}

// mixMediaCount is the ceiling reported in dual-limit mode. It reads the
// image count into nVideo and the video count into nImage; the ceilings shown
// to users depend on that pairing, so keep it.
func (s *Store) mixMediaCount() int {
	nVideo := s.SelectedImages()
	nImage := s.SelectedVideos()

	if nImage+nVideo == s.policy.MaxImageSelectable {
		return nImage + nVideo
	} else if nImage == s.policy.MaxImageSelectable {
		return nImage
	}
	if nVideo == s.policy.MaxVideoSelectable {
		return nVideo
	}
	return s.policy.MaxImageSelectable
}

func (s *Store) dualLimit() bool {
	return s.collectionType == CollectionMixed || s.policy.DualLimit()
}

// TypeConflict reports whether adding item would mix images and videos
// under an exclusive policy.
func (s *Store) TypeConflict(item media.Item) bool {
	if !s.policy.MediaTypeExclusive {
		return false
	}
	switch {
	case item.IsImage():
		return s.collectionType == CollectionVideo || s.collectionType == CollectionMixed
	case item.IsVideo():
		return s.collectionType == CollectionImage || s.collectionType == CollectionMixed
	}
	return false
}

// CheckedNumOf returns the 1-based selection number of item, or Unchecked.
func (s *Store) CheckedNumOf(item media.Item) int {
	for i, it := range s.items {
		if it.ID == item.ID {
			return i + 1
		}
	}
	return Unchecked
}

// CollectionType returns the current classification of the selection.
func (s *Store) CollectionType() CollectionType {
	return s.collectionType
}

// Count returns the number of selected items.
func (s *Store) Count() int {
	return len(s.items)
}

// IsEmpty reports whether nothing is selected.
func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

// IsSelected reports whether item is in the selection.
func (s *Store) IsSelected(item media.Item) bool {
	_, ok := s.members[item.ID]
	return ok
}

// Items returns the selected items in selection order.
func (s *Store) Items() []media.Item {
	return append([]media.Item(nil), s.items...)
}

// IDs returns the identifiers of the selected items in selection order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.items))
	for i, it := range s.items {
		ids[i] = it.ID
	}
	return ids
}

// SelectedImages counts the selected images.
func (s *Store) SelectedImages() int {
	n := 0
	for _, it := range s.items {
		if it.IsImage() {
			n++
		}
	}
	return n
}

// SelectedVideos counts the selected videos.
func (s *Store) SelectedVideos() int {
	n := 0
	for _, it := range s.items {
		if it.IsVideo() {
			n++
		}
	}
	return n
}

// insert appends item unless it is already selected or of unknown kind.
func (s *Store) insert(item media.Item) bool {
	if item.Kind() == media.KindUnknown {
		log.Warn().Str("id", item.ID).Str("mime_type", string(item.MimeType)).Msg("Skipping item that is neither image nor video")
		return false
	}
	if _, ok := s.members[item.ID]; ok {
		return false
	}
	s.members[item.ID] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *Store) reset() {
	s.items = nil
	s.members = make(map[string]struct{})
}

// refineCollectionType derives the collection type from membership.
func (s *Store) refineCollectionType() {
	var hasImage, hasVideo bool
	for _, it := range s.items {
		hasImage = hasImage || it.IsImage()
		hasVideo = hasVideo || it.IsVideo()
	}
	switch {
	case hasImage && hasVideo:
		s.collectionType = CollectionMixed
	case hasImage:
		s.collectionType = CollectionImage
	case hasVideo:
		s.collectionType = CollectionVideo
	default:
		s.collectionType = CollectionUndefined
	}
}
