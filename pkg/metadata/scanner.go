package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/artwall/harvest/pkg/core"
)

// NumericFields are coerced to integers by the line scanner.
var NumericFields = map[string]bool{
	"year":       true,
	"month":      true,
	"day":        true,
	"evaluation": true,
	"rating":     true,
}

var digitRun = regexp.MustCompile(`\d+`)

// LineScanner is the recovery grammar used when the structured parse fails.
//
// Every line holding a colon and not starting with '#' is split once at the first colon.
// Values lose one pair of matching outer quotes, every backtick and tilde, and any
// standalone '?' token. Numeric fields take their first run of digits; without digits
// day becomes 1 and the others 0. It never fails.
type LineScanner struct{}

func (LineScanner) Name() string { return "line-scanner" }

// Parse implements Strategy. The error is always nil.
func (s LineScanner) Parse(text string) (core.Metadata, error) {
	return s.Scan(text), nil
}

// Scan parses text line by line.
func (LineScanner) Scan(text string) core.Metadata {
	meta := make(core.Metadata)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ":") || strings.HasPrefix(line, "#") {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(line, ":")
		key := strings.ToLower(strings.TrimSpace(rawKey))
		if key == "" {
			continue
		}

		value := cleanValue(unquote(strings.TrimSpace(rawValue)))
		if NumericFields[key] {
			meta[key] = firstNumber(key, value)
			continue
		}
		meta[key] = value
	}
	return meta
}

func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '\'' || first == '"') && first == last {
			return v[1 : len(v)-1]
		}
	}
	return v
}

func cleanValue(v string) string {
	v = strings.NewReplacer("`", "", "~", "").Replace(v)

	tokens := strings.Split(v, " ")
	kept := tokens[:0]
	for _, tok := range tokens {
		if tok != "" && strings.Trim(tok, "?") == "" {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

func firstNumber(key, v string) int {
	if m := digitRun.FindString(v); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	if key == "day" {
		return 1
	}
	return 0
}
