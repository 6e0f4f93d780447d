package helpers

import (
	"strings"
	"unicode/utf8"
)

// Segment is a piece of text, marked when it matched the search term.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text around case-insensitive occurrences of term.
// Matching folds case rune by rune, so segment boundaries always fall on
// rune boundaries of the original text.
func Highlight(text, term string) []Segment {
	term = strings.TrimSpace(term)
	if text == "" {
		return nil
	}
	if term == "" {
		return []Segment{{Text: text}}
	}

	// offsets[i] is the byte index of rune i; the final entry is len(text).
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	width := utf8.RuneCountInString(term)

	var segments []Segment
	cursor := 0
	for i := 0; i+width < len(offsets); {
		start, end := offsets[i], offsets[i+width]
		if !strings.EqualFold(text[start:end], term) {
			i++
			continue
		}
		if start > cursor {
			segments = append(segments, Segment{Text: text[cursor:start]})
		}
		segments = append(segments, Segment{Text: text[start:end], Match: true})
		cursor = end
		i += width
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Text: text[cursor:]})
	}
	return segments
}
