// Package validate checks classified metadata before records are generated.
//
// Every rule runs; violations accumulate in order and nothing is auto-corrected.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// RequiredFields must be present and non-blank on every note.
var RequiredFields = []string{"title", "year", "month", "day", "medium", "subtype", "version"}

var (
	firstDigits  = regexp.MustCompile(`\d+`)
	languageCode = regexp.MustCompile(`^[A-Za-z]{2,3}$`)
)

// Validator implements core.Validator.
type Validator struct {
	tax *taxonomy.Taxonomy
}

var _ core.Validator = (*Validator)(nil)

// New returns a validator. A nil taxonomy means taxonomy.Default().
func New(tax *taxonomy.Taxonomy) *Validator {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Validator{tax: tax}
}

// Validate runs every rule against meta and returns all violations.
func (v *Validator) Validate(meta core.Metadata, vc core.ValidationContext) core.ValidationErrors {
	var errs core.ValidationErrors
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	missing := make(map[string]bool)
	for _, field := range RequiredFields {
		err := validation.Validate(meta.String(field),
			validation.Required.Error(fmt.Sprintf("required field '%s' is missing or empty", field)))
		if err != nil {
			missing[field] = true
		}
		add(err)
	}

	medium := v.tax.Canonical(meta.String("medium"))
	add(validation.Validate(medium, validation.In(anySlice(v.tax.Mediums())...).
		Error(fmt.Sprintf("unknown medium '%s', allowed: %s", meta.String("medium"), strings.Join(v.tax.Mediums(), ", ")))))

	if v.tax.HasMedium(medium) {
		subtype := strings.ToLower(meta.String("subtype"))
		allowed := v.tax.Subtypes(medium)
		add(validation.Validate(subtype, validation.In(anySlice(allowed)...).
			Error(fmt.Sprintf("unknown subtype '%s' for medium '%s', allowed: %s", meta.String("subtype"), medium, strings.Join(allowed, ", ")))))
	}

	for _, r := range []struct {
		field  string
		lo, hi int
		parse  func(any) (int, error)
	}{
		{"year", 1000, 9999, toInt},
		{"month", 1, 12, toInt},
		{"day", 1, 31, leadingInt},
	} {
		if missing[r.field] {
			continue
		}
		add(checkRange(meta, r.field, r.lo, r.hi, r.parse))
	}

	for _, field := range []string{"evaluation", "rating"} {
		if provided(meta[field]) {
			add(checkRange(meta, field, 1, 5, toInt))
		}
	}

	for _, key := range core.LanguageKeys {
		code := meta.String(key)
		add(validation.Validate(code, validation.Match(languageCode).
			Error(fmt.Sprintf("%s '%s' must be a two or three letter language code", key, code))))
	}

	switch {
	case v.tax.IsText(medium):
		add(validation.Validate(meta.String("language1"),
			validation.Required.Error(fmt.Sprintf("medium '%s' requires language1", medium))))
		if vc.HasTranslations {
			add(validation.Validate(meta.Languages(), validation.By(translationsMatch(vc.SegmentCount))))
		}
	case v.tax.IsMedia(medium):
		add(validation.Validate(vc.HasResources, validation.By(func(value any) error {
			if !value.(bool) {
				return validation.NewError("validation_attachment_required",
					fmt.Sprintf("medium '%s' requires at least one attachment", medium))
			}
			return nil
		})))
	}

	return errs
}

func checkRange(meta core.Metadata, field string, lo, hi int, parse func(any) (int, error)) error {
	n, err := parse(meta[field])
	if err != nil {
		return validation.NewError("validation_not_a_number", fmt.Sprintf("%s '%s' is not a valid number", field, meta.String(field)))
	}
	return validation.Validate(n, validation.By(func(value any) error {
		if x := value.(int); x < lo || x > hi {
			return validation.NewError("validation_out_of_range", fmt.Sprintf("%s '%d' must be between %d and %d", field, x, lo, hi))
		}
		return nil
	}))
}

func translationsMatch(segments int) validation.RuleFunc {
	return func(value any) error {
		langs := value.([]string)
		var msgs []string
		if len(langs) != segments {
			msgs = append(msgs, fmt.Sprintf("%d languages declared but the text has %d translation blocks", len(langs), segments))
		}
		seen := make(map[string]bool, len(langs))
		for _, l := range langs {
			key := strings.ToLower(l)
			if seen[key] {
				msgs = append(msgs, fmt.Sprintf("language code '%s' is declared more than once", key))
				break
			}
			seen[key] = true
		}
		if len(msgs) == 0 {
			return nil
		}
		return validation.NewError("validation_translations", strings.Join(msgs, "; "))
	}
}

// provided reports whether an optional numeric field was filled in.
func provided(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case int:
		return t != 0
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// leadingInt accepts free text such as "3rd" and yields 0 when there are no digits.
func leadingInt(v any) (int, error) {
	if s, ok := v.(string); ok {
		s = strings.NewReplacer("`", "", "?", "", "~", "").Replace(s)
		m := firstDigits.FindString(s)
		if m == "" {
			return 0, nil
		}
		return strconv.Atoi(m)
	}
	return toInt(v)
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
