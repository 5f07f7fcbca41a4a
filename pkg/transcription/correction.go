package transcription

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// correctCustomWords replaces words in text with entries from glossary when
// a word's fuzzy similarity to a glossary entry meets threshold. Ranking is
// Jaro-Winkler on the word pair, following the two-stage phonetic-then-fuzzy
// matcher this is grounded on, narrowed here to the single-threshold
// contract the settings expose: every glossary entry is a candidate, and
// the highest-scoring one above threshold wins.
//
// Matching is case-insensitive; the replacement preserves the glossary
// entry's own casing (e.g. a product name stays capitalized the way the
// user typed it into the glossary).
func correctCustomWords(text string, glossary []string, threshold float64) string {
	if len(glossary) == 0 || strings.TrimSpace(text) == "" {
		return text
	}

	words := strings.Fields(text)
	for i, w := range words {
		trimmed := strings.Trim(w, ".,!?;:\"'")
		if trimmed == "" {
			continue
		}
		if best, _, ok := bestGlossaryMatch(trimmed, glossary, threshold); ok {
			words[i] = strings.Replace(w, trimmed, best, 1)
		}
	}
	return strings.Join(words, " ")
}

// bestGlossaryMatch returns the glossary entry with the highest
// Jaro-Winkler similarity to word, provided that similarity meets
// threshold. Double Metaphone codes are used first to cheaply rule out
// entries with no phonetic relationship at all before the more expensive
// string comparison.
func bestGlossaryMatch(word string, glossary []string, threshold float64) (match string, score float64, ok bool) {
	wordLower := strings.ToLower(word)
	wordPrimary, wordSecondary := matchr.DoubleMetaphone(wordLower)

	for _, entry := range glossary {
		entryLower := strings.ToLower(strings.TrimSpace(entry))
		if entryLower == "" || entryLower == wordLower {
			continue
		}

		entryPrimary, entrySecondary := matchr.DoubleMetaphone(entryLower)
		if !codesShareAny(wordPrimary, wordSecondary, entryPrimary, entrySecondary) {
			continue
		}

		s := matchr.JaroWinkler(wordLower, entryLower, false)
		if s >= threshold && s > score {
			match, score, ok = entry, s, true
		}
	}

	return match, score, ok
}

func codesShareAny(p1, s1, p2, s2 string) bool {
	for _, a := range []string{p1, s1} {
		if a == "" {
			continue
		}
		if a == p2 || a == s2 {
			return true
		}
	}
	return false
}
