//go:build !cgo

package ocr

import (
	"errors"
	"image"

	"github.com/flowforge/flowforge/internal/geometry"
)

// Available reports whether the Tesseract engine is compiled in.
func Available() bool { return false }

var errUnavailable = errors.New("ocr: tesseract requires cgo")

func readRegion(_ image.Image, _ geometry.Bounds, _ Config) (string, error) {
	return "", errUnavailable
}
