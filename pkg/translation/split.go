// Package translation splits note content on ---TRANSLATION_xx--- delimiters.
package translation

import (
	"regexp"
	"strings"

	"github.com/artwall/harvest/pkg/core"
)

var delimiter = regexp.MustCompile(`(?i)---TRANSLATION_([a-z]{2})---`)

// Splitter implements core.Splitter.
type Splitter struct{}

var _ core.Splitter = Splitter{}

// Split implements core.Splitter.
func (Splitter) Split(content string) []core.Segment { return Split(content) }

// Split divides content at every delimiter. The delimiters are dropped; segment 0 is the
// text before the first one. The result always has Count(content)+1 segments.
func Split(content string) []core.Segment {
	matches := delimiter.FindAllStringSubmatchIndex(content, -1)
	segments := make([]core.Segment, 0, len(matches)+1)

	start := 0
	code, marker := "", ""
	for _, m := range matches {
		segments = append(segments, core.Segment{Code: code, Marker: marker, Body: content[start:m[0]]})
		code = strings.ToLower(content[m[2]:m[3]])
		marker = content[m[0]:m[1]]
		start = m[1]
	}
	return append(segments, core.Segment{Code: code, Marker: marker, Body: content[start:]})
}

// Join is the inverse of Split: it concatenates segments with their original markers.
func Join(segments []core.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Marker)
		b.WriteString(s.Body)
	}
	return b.String()
}

// Count returns the number of delimiters in content.
func Count(content string) int {
	return len(delimiter.FindAllStringIndex(content, -1))
}

// HasTranslations reports whether content holds at least one delimiter.
func HasTranslations(content string) bool {
	return delimiter.MatchString(content)
}
