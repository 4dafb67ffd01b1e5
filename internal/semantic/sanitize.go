package semantic

import (
	"strings"

	"github.com/tidwall/gjson"
)

// StripCodeFences removes a surrounding markdown code fence from model
// output, if present. Content without fences passes through trimmed.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractJSON pulls the first JSON object out of arbitrary model
// output: strip code fences, take the span from the first '{' to the
// last '}', and verify it parses. Returns "" when no valid object is
// present.
func ExtractJSON(text string) string {
	if text == "" {
		return ""
	}
	s := StripCodeFences(text)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}
	candidate := strings.TrimSpace(s[start : end+1])
	if !gjson.Valid(candidate) {
		return ""
	}
	return candidate
}
