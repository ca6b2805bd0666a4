// Package classify resolves the medium and subtype of a note.
package classify

import (
	"fmt"
	"strings"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// Classifier implements core.Classifier. It never fails: anything it cannot resolve ends
// up as the taxonomy fallback pair, with a warning.
type Classifier struct {
	Taxonomy   *taxonomy.Taxonomy
	Heuristics Heuristics
}

var _ core.Classifier = (*Classifier)(nil)

// New returns a classifier. A nil taxonomy means taxonomy.Default().
func New(tax *taxonomy.Taxonomy, h Heuristics) *Classifier {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Classifier{Taxonomy: tax, Heuristics: h}
}

// Classify returns a copy of meta holding a valid medium/subtype pair.
//
// An explicit pair is checked against the taxonomy. Otherwise a legacy category is mapped.
// Otherwise the missing fields are detected from content, and the note is tagged with
// category "other" when it had none.
func (c *Classifier) Classify(meta core.Metadata, content string, resources []core.Resource) (core.Metadata, []string) {
	out := meta.Clone()
	var warnings []string

	medium, subtype := out.String("medium"), out.String("subtype")
	switch {
	case medium != "" && subtype != "":
		if !c.Taxonomy.IsValid(medium, subtype) {
			fb := c.Taxonomy.Fallback()
			warnings = append(warnings, fmt.Sprintf("invalid medium/subtype '%s/%s', using '%s'", medium, subtype, fb))
			medium, subtype = fb.Medium, fb.Subtype
		}

	case !out.IsBlank("category"):
		category := out.String("category")
		p, known := c.Taxonomy.Legacy(category)
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown category '%s', using '%s'", category, p))
		}
		medium, subtype = p.Medium, p.Subtype

	default:
		d := c.Heuristics.Detect(content, resources)
		hint := ""
		if len(d.MediaTypes) > 0 {
			hint = fmt.Sprintf(" (attachments: %s)", strings.Join(d.MediaTypes, ", "))
		}
		if medium == "" {
			medium = d.Pair.Medium
			warnings = append(warnings, fmt.Sprintf("auto-detected medium: %s from %s%s", medium, d.Reason, hint))
		}
		if subtype == "" {
			subtype = d.Pair.Subtype
			warnings = append(warnings, fmt.Sprintf("auto-detected subtype: %s from %s%s", subtype, d.Reason, hint))
		}
		if !out.Has("category") || out.IsBlank("category") {
			out["category"] = "other"
		}
		if !c.Taxonomy.IsValid(medium, subtype) {
			fb := c.Taxonomy.Fallback()
			warnings = append(warnings, fmt.Sprintf("medium/subtype '%s/%s' is not in the taxonomy, using '%s'", medium, subtype, fb))
			medium, subtype = fb.Medium, fb.Subtype
		}
	}

	out["medium"] = c.Taxonomy.Canonical(medium)
	out["subtype"] = strings.ToLower(subtype)
	return out, warnings
}
