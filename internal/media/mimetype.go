package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownMimeType is returned when an extension or name maps to no known type.
var ErrUnknownMimeType = errors.New("unknown mime type")

// MimeType is a mime type string the picker knows how to classify.
type MimeType string

// Image types.
const (
	JPEG MimeType = "image/jpeg"
	PNG  MimeType = "image/png"
	GIF  MimeType = "image/gif"
	BMP  MimeType = "image/x-ms-bmp"
	WEBP MimeType = "image/webp"
	HEIC MimeType = "image/heic"
	HEIF MimeType = "image/heif"
)

// Video types.
const (
	MPEG      MimeType = "video/mpeg"
	MP4       MimeType = "video/mp4"
	QuickTime MimeType = "video/quicktime"
	ThreeGPP  MimeType = "video/3gpp"
	ThreeGPP2 MimeType = "video/3gpp2"
	MKV       MimeType = "video/x-matroska"
	WEBM      MimeType = "video/webm"
	TS        MimeType = "video/mp2ts"
	AVI       MimeType = "video/avi"
)

// typeExtensions lists the file extensions recognised for each mime type.
var typeExtensions = map[MimeType][]string{
	JPEG: {".jpg", ".jpeg"},
	PNG:  {".png"},
	GIF:  {".gif"},
	BMP:  {".bmp"},
	WEBP: {".webp"},
	HEIC: {".heic"},
	HEIF: {".heif"},

	MPEG:      {".mpeg", ".mpg"},
	MP4:       {".mp4", ".m4v"},
	QuickTime: {".mov"},
	ThreeGPP:  {".3gp", ".3gpp"},
	ThreeGPP2: {".3g2", ".3gpp2"},
	MKV:       {".mkv"},
	WEBM:      {".webm"},
	TS:        {".ts"},
	AVI:       {".avi"},
}

// extensionTypes is the reverse of typeExtensions.
var extensionTypes = func() map[string]MimeType {
	m := make(map[string]MimeType)
	for mt, exts := range typeExtensions {
		for _, ext := range exts {
			m[ext] = mt
		}
	}
	return m
}()

// Kind returns the category implied by the mime type prefix.
func (m MimeType) Kind() Kind {
	switch {
	case strings.HasPrefix(string(m), "image/"):
		return KindImage
	case strings.HasPrefix(string(m), "video/"):
		return KindVideo
	default:
		return KindUnknown
	}
}

// Extensions returns the lowercase extensions (with leading dot) for the type.
func (m MimeType) Extensions() []string {
	return append([]string(nil), typeExtensions[m]...)
}

// MatchesPath reports whether the path carries one of the type's extensions.
func (m MimeType) MatchesPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range typeExtensions[m] {
		if e == ext {
			return true
		}
	}
	return false
}

// Known reports whether the picker has an extension table for the type.
func (m MimeType) Known() bool {
	_, ok := typeExtensions[m]
	return ok
}

// ForExtension returns the mime type for a file extension (with or without dot).
func ForExtension(ext string) (MimeType, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mt, ok := extensionTypes[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("extension %q: %w", ext, ErrUnknownMimeType)
}

// Parse validates a mime type name such as "image/png".
func Parse(name string) (MimeType, error) {
	mt := MimeType(strings.ToLower(strings.TrimSpace(name)))
	if !mt.Known() {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownMimeType)
	}
	return mt, nil
}

// OfAll returns every known mime type, images first.
func OfAll() []MimeType {
	return append(OfImage(), OfVideo()...)
}

// OfImage returns every known image mime type, sorted by name.
func OfImage() []MimeType {
	return ofKind(KindImage)
}

// OfVideo returns every known video mime type, sorted by name.
func OfVideo() []MimeType {
	return ofKind(KindVideo)
}

func ofKind(k Kind) []MimeType {
	var out []MimeType
	for mt := range typeExtensions {
		if mt.Kind() == k {
			out = append(out, mt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
