// Package record names and assembles the artifacts written for a validated note.
package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/artwall/harvest/pkg/core"
)

var (
	nonSlug       = regexp.MustCompile(`[^a-z0-9]+`)
	leadingDigits = regexp.MustCompile(`\d+`)
)

// Options are the optional parts of a file name.
type Options struct {
	// Language is appended slugged when set.
	Language string
	// Version is appended as two digits when it is a non-zero integer or integer string.
	Version any
}

// Filename returns {YYYYMMDD}_{medium}_{subtype}[_{slug}][_{version:02}][_{lang}].
// It depends only on its inputs, so unchanged notes always map to the same names.
// Every component is reduced to [a-z0-9-], so the result never contains a path separator.
func Filename(meta core.Metadata, opts Options) string {
	date := fmt.Sprintf("%04d%02d%02d", datePart(meta, "year"), datePart(meta, "month"), datePart(meta, "day"))

	medium := orDefault(Slug(meta.String("medium")), "unknown")
	subtype := orDefault(Slug(meta.String("subtype")), "unknown")

	slug := Slug(orDefault(meta.String("title"), "untitled"))
	slug = strings.TrimPrefix(slug, subtype+"-")

	var b strings.Builder
	b.WriteString(date)
	b.WriteString("_" + medium + "_" + subtype)
	if slug != "" {
		b.WriteString("_" + slug)
	}
	if v, ok := versionNumber(opts.Version); ok {
		fmt.Fprintf(&b, "_%02d", v)
	}
	if lang := Slug(opts.Language); lang != "" {
		b.WriteString("_" + lang)
	}
	return b.String()
}

// Slug lower-cases s and collapses every run of characters outside [a-z0-9] into a hyphen.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func versionNumber(v any) (int, bool) {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	return n, n != 0
}

// datePart reads the first digit run of a date field, so "3rd" yields 3.
// Anything unreadable, negative or longer than the field width becomes 0.
func datePart(meta core.Metadata, key string) int {
	var n int
	switch v := meta[key].(type) {
	case int:
		n = v
	case string:
		n, _ = strconv.Atoi(leadingDigits.FindString(v))
	}
	limit := 100
	if key == "year" {
		limit = 10000
	}
	if n < 0 || n >= limit {
		return 0
	}
	return n
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
