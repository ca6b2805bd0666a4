// Package markup strips note-export presentation markup.
//
// Two strengths are offered: SanitizeMetadata reduces a region to plain, trimmed,
// non-empty lines for key:value parsing, while SanitizeContent only removes the export
// wrapper and styling and keeps every internal break, because the result is rendered as is.
package markup

import (
	"html"
	"regexp"
	"strings"
)

var (
	blockBreak = regexp.MustCompile(`(?i)</(?:div|p|li|h[1-6]|tr)\s*>|<br\s*/?>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)

	xmlDecl      = regexp.MustCompile(`<\?xml[^>]*\?>`)
	doctype      = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	noteOpen     = regexp.MustCompile(`(?i)<en-note[^>]*>`)
	noteClose    = regexp.MustCompile(`(?i)</en-note>`)
	hiddenDiv    = regexp.MustCompile(`(?is)<div style="display:\s*none;?[^"]*"[^>]*>.*?</div>`)
	hiddenStyled = regexp.MustCompile(`(?is)<div[^>]*style="[^"]*display:\s*none[^"]*"[^>]*>.*?</div>`)
	styleAttr    = regexp.MustCompile(`\s*style="[^"]*"`)
	brVariant    = regexp.MustCompile(`(?i)<br\s*/?>`)
	emptyPara    = regexp.MustCompile(`(?i)<div><br></div>`)
	divOpen      = regexp.MustCompile(`(?i)<div[^>]*>`)
	divClose     = regexp.MustCompile(`(?i)</div>`)
	leadingBr    = regexp.MustCompile(`(?i)^(?:<br>\s*)+`)
	trailingBr   = regexp.MustCompile(`(?i)(?:<br>\s*)+$`)
)

// SanitizeMetadata converts a metadata region to plain text: block closings become line
// breaks, all other tags are removed, entities are decoded, and each line is trimmed.
// Empty lines are dropped; line order is preserved.
func SanitizeMetadata(s string) string {
	s = blockBreak.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// SanitizeContent removes the export wrapper, hidden blocks and style attributes, and
// collapses line breaks to a single <br> form. Only leading and trailing breaks are trimmed.
func SanitizeContent(s string) string {
	s = xmlDecl.ReplaceAllString(s, "")
	s = doctype.ReplaceAllString(s, "")
	s = noteOpen.ReplaceAllString(s, "")
	s = noteClose.ReplaceAllString(s, "")

	s = hiddenDiv.ReplaceAllString(s, "")
	s = hiddenStyled.ReplaceAllString(s, "")
	s = styleAttr.ReplaceAllString(s, "")

	s = brVariant.ReplaceAllString(s, "<br>")
	s = emptyPara.ReplaceAllString(s, "<br>")
	s = divOpen.ReplaceAllString(s, "")
	s = divClose.ReplaceAllString(s, "<br>")

	s = strings.TrimSpace(s)
	s = leadingBr.ReplaceAllString(s, "")
	s = trailingBr.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// PlainText strips all markup but keeps one line per block, for heuristics that reason
// about lines. Lines are not trimmed.
func PlainText(s string) string {
	s = blockBreak.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}
