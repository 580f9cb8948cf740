// Package media describes the items a picker can select.
//
// An Item is identified by its ID (a file path, file:// URI or s3:// URI). Two
// items with the same ID are the same selection, whatever else they carry.
// The item's Kind (image or video) is derived from its mime type, so the
// selection engine never has to look at the file itself.
package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Kind is the broad category of a media item.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Item is one selectable media asset. Items are values; copy them freely.
type Item struct {
	ID       string
	MimeType MimeType
	Size     int64
	Duration time.Duration
}

// NewItem builds an Item from an identifier and an explicit mime type.
func NewItem(id string, mimeType MimeType, size int64, duration time.Duration) Item {
	return Item{
		ID:       id,
		MimeType: mimeType,
		Size:     size,
		Duration: duration,
	}
}

// ItemFromPath builds an Item whose mime type is derived from the file extension.
func ItemFromPath(path string, size int64) (Item, error) {
	mt, err := ForExtension(filepath.Ext(path))
	if err != nil {
		return Item{}, fmt.Errorf("item %s: %w", path, err)
	}
	return NewItem(path, mt, size, 0), nil
}

// Kind returns image or video based on the item's mime type.
func (i Item) Kind() Kind {
	return i.MimeType.Kind()
}

// IsImage reports whether the item is an image.
func (i Item) IsImage() bool {
	return i.Kind() == KindImage
}

// IsVideo reports whether the item is a video.
func (i Item) IsVideo() bool {
	return i.Kind() == KindVideo
}

// IsGif reports whether the item is a GIF image.
func (i Item) IsGif() bool {
	return i.MimeType == GIF
}

// Name returns the last path element of the item's identifier.
func (i Item) Name() string {
	id := strings.TrimPrefix(i.ID, "file://")
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}
