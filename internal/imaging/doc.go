// Package imaging provides image loading, caching, and the raster
// preprocessing that feeds shape detection.
//
// Loading goes through ImageCache so that a pipeline run touching the
// same file several times (detection, OCR crops, overlay rendering)
// decodes it once. Preprocessing produces the binary ink raster the
// detector walks: grayscale conversion, Gaussian noise reduction, Otsu
// thresholding, and a morphological close that solidifies thin strokes
// without destroying small glyphs.
package imaging
