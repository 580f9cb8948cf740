package filehandler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxBitmapWidth is the size BitmapSize reports when an image's bounds
// cannot be read.
const MaxBitmapWidth = 1600

// EXIF orientation values for images stored rotated a quarter turn.
const (
	orientationRotate90  = 6
	orientationRotate270 = 8
)

// Bounds reads the pixel dimensions of the image at path without decoding
// the pixel data. A file that can't be opened or decoded reports 0x0.
func Bounds(path string) (width, height int) {
	f, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Failed to open image for bounds")
		return 0, 0
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Failed to decode image config")
		return 0, 0
	}
	log.Debug().
		Str("path", path).
		Str("format", format).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Msg("Image bounds read")
	return cfg.Width, cfg.Height
}

// PixelCount returns width*height of the image at path.
func PixelCount(path string) int {
	w, h := Bounds(path)
	return w * h
}

// ShouldRotate reports whether the image's EXIF orientation says it is stored
// rotated by 90 or 270 degrees. Images without readable EXIF never rotate.
func ShouldRotate(path string) bool {
	orientation, err := exifOrientation(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Could not read EXIF orientation")
		return false
	}
	return orientation == orientationRotate90 || orientation == orientationRotate270
}

// exifOrientation reads the orientation tag with imagemeta, which understands
// HEIC containers, and falls back to goexif for JPEGs imagemeta rejects.
func exifOrientation(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if e, err := imagemeta.Decode(f); err == nil && e.Orientation != 0 {
		return int(uint8(e.Orientation)), nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind file: %w", err)
	}
	x, err := exif.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, fmt.Errorf("no orientation tag: %w", err)
	}
	return tag.Int(0)
}

// BitmapSize returns the size at which the image at path is displayed on a
// screenWidth x screenHeight screen, after applying EXIF rotation. Images
// whose bounds can't be read report MaxBitmapWidth square.
func BitmapSize(path string, screenWidth, screenHeight int) (width, height int) {
	w, h := Bounds(path)
	if ShouldRotate(path) {
		w, h = h, w
	}
	if h == 0 || w == 0 {
		return MaxBitmapWidth, MaxBitmapWidth
	}
	widthScale := float32(screenWidth) / float32(w)
	heightScale := float32(screenHeight) / float32(h)
	return int(float32(w) * widthScale), int(float32(h) * heightScale)
}

// SizeInMB converts a byte count to megabytes rounded to one decimal place.
func SizeInMB(sizeInBytes int64) float64 {
	mb := float64(sizeInBytes) / 1024 / 1024
	return math.Round(mb*10) / 10
}
