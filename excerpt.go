package pilot

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultExcerptLength is the number of characters kept on each side of a
// match when building an excerpt.
const DefaultExcerptLength = 100

// Ellipsis marks text clipped from an excerpt.
const Ellipsis = "..."

var tagRe = regexp.MustCompile(`<[^>]+>`)

// PlainText replaces every markup tag with a single space and collapses
// runs of whitespace into one space.
func PlainText(content string) string {
	stripped := tagRe.ReplaceAllString(content, " ")

	var sb strings.Builder
	sb.Grow(len(stripped))
	prevSpace := false
	for _, r := range stripped {
		if unicode.IsSpace(r) {
			if !prevSpace {
				sb.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}
	return sb.String()
}

// Excerpt returns a window of the plain text of content around the first
// case-insensitive occurrence of query, keeping contextLength characters on
// each side. Clipped ends are marked with Ellipsis. When query does not occur
// in the text (the match was in the title), the first 2*contextLength
// characters are returned followed by Ellipsis.
func Excerpt(content, query string, contextLength int) string {
	if content == "" {
		return ""
	}

	text := []rune(PlainText(content))
	lower := []rune(strings.ToLower(string(text)))
	term := []rune(strings.ToLower(query))

	i := indexRunes(lower, term)
	if i < 0 {
		end := min(len(text), 2*contextLength)
		return string(text[:end]) + Ellipsis
	}

	start := max(0, i-contextLength)
	end := min(len(text), i+len(term)+contextLength)

	var sb strings.Builder
	if start > 0 {
		sb.WriteString(Ellipsis)
	}
	sb.WriteString(string(text[start:end]))
	if end < len(text) {
		sb.WriteString(Ellipsis)
	}
	return sb.String()
}

// indexRunes returns the index of the first occurrence of sub in s, or -1.
func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
