package ocr

import "strings"

// trimOCRText normalizes raw Tesseract output: collapse internal
// newlines to single spaces and trim the surrounding whitespace the
// engine habitually appends.
func trimOCRText(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
