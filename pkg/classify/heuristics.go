package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/markup"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// Heuristics tunes content-based auto-detection.
type Heuristics struct {
	// Keywords mark a note as music when any occurs in the lower-cased content.
	Keywords []string `yaml:"keywords"`
	// MinLines is the number of non-empty lines a poem must exceed.
	MinLines int `yaml:"min_lines"`
	// MaxMeanLineLength is the mean line length a poem must stay below.
	MaxMeanLineLength float64 `yaml:"max_mean_line_length"`
	// LongFormLength is the content length above which a note is prose.
	LongFormLength int `yaml:"long_form_length"`
}

// DefaultHeuristics returns the built-in detection thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Keywords:          []string{"akkoord", "chord", "vers", "refrein", "lied", "muziek", "melody", "beat"},
		MinLines:          3,
		MaxMeanLineLength: 50,
		LongFormLength:    500,
	}
}

var (
	musicPair   = taxonomy.Pair{Medium: "audio", Subtype: "vocal"}
	poemPair    = taxonomy.Pair{Medium: "writing", Subtype: "poem"}
	prosePair   = taxonomy.Pair{Medium: "writing", Subtype: "prose"}
	defaultPair = taxonomy.Pair{Medium: "writing", Subtype: "other"}
)

// Detection is the outcome of Detect.
type Detection struct {
	Pair   taxonomy.Pair
	Reason string
	// MediaTypes lists attachment MIME types seen. They never change the pair.
	MediaTypes []string
}

// Detect guesses a medium/subtype pair from note content. Checks run in priority order:
// music keywords, short-line poetry, long-form prose, then the default.
func (h Heuristics) Detect(content string, resources []core.Resource) Detection {
	text := markup.PlainText(content)
	d := Detection{Pair: defaultPair, Reason: "no signal"}
	for _, r := range resources {
		if r.MIME != "" {
			d.MediaTypes = append(d.MediaTypes, strings.ToLower(r.MIME))
		}
	}

	lower := strings.ToLower(text)
	for _, kw := range h.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			d.Pair, d.Reason = musicPair, "keyword '"+kw+"'"
			return d
		}
	}

	var lines []string
	total := 0
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
			total += utf8.RuneCountInString(line)
		}
	}
	if len(lines) > h.MinLines && float64(total)/float64(len(lines)) < h.MaxMeanLineLength {
		d.Pair, d.Reason = poemPair, "short lines"
		return d
	}

	if utf8.RuneCountInString(text) > h.LongFormLength {
		d.Pair, d.Reason = prosePair, "long form"
	}
	return d
}
