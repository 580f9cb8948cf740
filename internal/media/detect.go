package media

import (
	"github.com/gabriel-vasile/mimetype"
)

// detectedNames covers detector names that differ from the picker's own
// spelling of the type and are not registered as aliases of it.
var detectedNames = map[string]MimeType{
	"image/bmp":       BMP,
	"video/mp2t":      TS,
	"video/x-msvideo": AVI,
}

// Detect identifies a known mime type from the leading bytes of a file.
// It returns "" when the content is not one of the picker's types.
func Detect(b []byte) MimeType {
	return fromDetected(mimetype.Detect(b))
}

// DetectFile reads the head of the file at path and identifies its type.
func DetectFile(path string) (MimeType, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return fromDetected(m), nil
}

// fromDetected matches the detector's result, or one of its aliases, against
// the catalog. Parent types are not consulted: an ISO BMFF brand the picker
// does not know stays unknown rather than becoming video/mp4.
func fromDetected(m *mimetype.MIME) MimeType {
	for _, mt := range OfAll() {
		if m.Is(string(mt)) {
			return mt
		}
	}
	for name, mt := range detectedNames {
		if m.Is(name) {
			return mt
		}
	}
	return ""
}
