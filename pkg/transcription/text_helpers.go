package transcription

import (
	"regexp"
	"strings"
)

var spacePattern = regexp.MustCompile(`\s+`)

// normalizeSegmentText trims and collapses whitespace in a backend's raw
// segment text and fixes spacing before common punctuation. It does not
// attempt to strip noise markers or special tokens — backends that emit
// those are expected to do so consistently, and stripping them is a
// presentation concern owned by the caller, not this core.
func normalizeSegmentText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = spacePattern.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " ?", "?")
	text = strings.ReplaceAll(text, " !", "!")

	return strings.TrimSpace(text)
}
