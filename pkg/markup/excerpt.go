package markup

import (
	"regexp"
	"strings"
)

var firstSentence = regexp.MustCompile(`^([^.!?]+[.!?])`)

// Excerpt builds a short description from note content.
//
// A first line of at most 100 characters is taken to be the title and skipped. When
// joinLines is set (poems, lyrics) the first two remaining lines are joined; otherwise the
// first remaining line is cut at its first sentence. The text is truncated to max-3
// characters, preferring a word boundary, and always ends in "...". Content without text
// yields "".
func Excerpt(s string, max int, joinLines bool) string {
	var lines []string
	for _, line := range strings.Split(PlainText(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	if len(lines) > 1 && len([]rune(lines[0])) <= 100 {
		lines = lines[1:]
	}

	var text string
	if joinLines && len(lines) >= 2 {
		text = lines[0] + " " + lines[1]
	} else {
		text = lines[0]
		if m := firstSentence.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	}

	limit := max - 3
	if limit < 1 {
		limit = 1
	}
	if r := []rune(text); len(r) > limit {
		cut := string(r[:limit])
		if sp := strings.LastIndex(cut, " "); sp > 0 && float64(len([]rune(cut[:sp]))) > float64(limit)*0.7 {
			cut = cut[:sp]
		}
		text = cut
	}

	text = strings.TrimSpace(strings.TrimRight(text, ","))
	return text + "..."
}
