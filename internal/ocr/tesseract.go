//go:build cgo

package ocr

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/flowforge/flowforge/internal/geometry"
)

// Available reports whether the Tesseract engine is compiled in.
func Available() bool { return true }

// readRegion crops a region from the image and runs Tesseract on it.
// Tesseract needs a file path, so the crop goes through a temporary
// PNG that is removed after recognition. Returned text is trimmed of
// surrounding whitespace.
func readRegion(img image.Image, b geometry.Bounds, cfg Config) (string, error) {
	cropped := imaging.Crop(img, image.Rect(b.X1, b.Y1, b.X2, b.Y2))

	tmpFile, err := os.CreateTemp("", "flowforge-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, cropped); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(cfg.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set segmentation mode: %w", err)
	}
	if err := client.SetImage(tmpPath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return trimOCRText(text), nil
}
