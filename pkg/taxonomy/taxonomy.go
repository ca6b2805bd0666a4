// Package taxonomy holds the closed medium/subtype classification and the mapping from
// legacy single-field categories onto it.
//
// A Taxonomy is immutable once loaded and safe for concurrent use.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTable []byte

// Pair is a medium/subtype combination.
type Pair struct {
	Medium  string
	Subtype string
}

func (p Pair) String() string {
	return p.Medium + "/" + p.Subtype
}

// Taxonomy is the immutable classification table.
type Taxonomy struct {
	order    []string
	subtypes map[string][]string
	allowed  map[string]map[string]bool
	aliases  map[string]string
	legacy   map[string]Pair
	fallback Pair
	text     map[string]bool
	media    map[string]bool
	audio    map[string]bool
}

type rawTable struct {
	Mediums  yaml.Node           `yaml:"mediums"`
	Aliases  map[string]string   `yaml:"aliases"`
	Legacy   map[string][]string `yaml:"legacy"`
	Fallback []string            `yaml:"fallback"`
	Roles    struct {
		Text  []string `yaml:"text"`
		Media []string `yaml:"media"`
		Audio []string `yaml:"audio"`
	} `yaml:"roles"`
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the built-in table. It is parsed once per process.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Load(strings.NewReader(string(defaultTable)))
		if err != nil {
			panic(fmt.Sprintf("taxonomy: embedded table is invalid: %v", err))
		}
		defaultTax = t
	})
	return defaultTax
}

// LoadFile reads a taxonomy override from disk.
func LoadFile(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML taxonomy table and checks its consistency.
func Load(r io.Reader) (*Taxonomy, error) {
	var raw rawTable
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid taxonomy yaml: %w", err)
	}

	t := &Taxonomy{
		subtypes: make(map[string][]string),
		allowed:  make(map[string]map[string]bool),
		aliases:  make(map[string]string),
		legacy:   make(map[string]Pair),
		text:     make(map[string]bool),
		media:    make(map[string]bool),
		audio:    make(map[string]bool),
	}

	if raw.Mediums.Kind != yaml.MappingNode {
		return nil, errors.New("taxonomy: 'mediums' must be a mapping")
	}
	for i := 0; i+1 < len(raw.Mediums.Content); i += 2 {
		medium := normalize(raw.Mediums.Content[i].Value)
		var subs []string
		if err := raw.Mediums.Content[i+1].Decode(&subs); err != nil {
			return nil, fmt.Errorf("taxonomy: subtypes of %q: %w", medium, err)
		}
		if len(subs) == 0 {
			return nil, fmt.Errorf("taxonomy: medium %q has no subtypes", medium)
		}
		if _, dup := t.allowed[medium]; dup {
			return nil, fmt.Errorf("taxonomy: medium %q declared twice", medium)
		}
		t.order = append(t.order, medium)
		t.allowed[medium] = make(map[string]bool, len(subs))
		for _, s := range subs {
			s = normalize(s)
			t.subtypes[medium] = append(t.subtypes[medium], s)
			t.allowed[medium][s] = true
		}
	}

	pair, err := t.pair(raw.Fallback)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: fallback: %w", err)
	}
	t.fallback = pair

	for alias, target := range raw.Aliases {
		target = normalize(target)
		if !t.HasMedium(target) {
			return nil, fmt.Errorf("taxonomy: alias %q points to unknown medium %q", alias, target)
		}
		t.aliases[normalize(alias)] = target
	}

	for category, target := range raw.Legacy {
		pair, err := t.pair(target)
		if err != nil {
			return nil, fmt.Errorf("taxonomy: legacy category %q: %w", category, err)
		}
		t.legacy[normalize(category)] = pair
	}

	for _, role := range []struct {
		names []string
		set   map[string]bool
	}{{raw.Roles.Text, t.text}, {raw.Roles.Media, t.media}, {raw.Roles.Audio, t.audio}} {
		for _, m := range role.names {
			m = normalize(m)
			if !t.HasMedium(m) {
				return nil, fmt.Errorf("taxonomy: role references unknown medium %q", m)
			}
			role.set[m] = true
		}
	}

	return t, nil
}

func (t *Taxonomy) pair(v []string) (Pair, error) {
	if len(v) != 2 {
		return Pair{}, fmt.Errorf("expected [medium, subtype], got %v", v)
	}
	p := Pair{Medium: normalize(v[0]), Subtype: normalize(v[1])}
	if !t.IsValid(p.Medium, p.Subtype) {
		return Pair{}, fmt.Errorf("%s is not in the table", p)
	}
	return p, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Mediums returns every medium in declaration order.
func (t *Taxonomy) Mediums() []string {
	return append([]string(nil), t.order...)
}

// Subtypes returns the subtypes allowed for medium, or nil for an unknown medium.
func (t *Taxonomy) Subtypes(medium string) []string {
	return append([]string(nil), t.subtypes[t.Canonical(medium)]...)
}

// HasMedium reports whether medium (after alias resolution) is in the table.
func (t *Taxonomy) HasMedium(medium string) bool {
	_, ok := t.allowed[t.Canonical(medium)]
	return ok
}

// IsValid reports whether subtype is allowed for medium.
func (t *Taxonomy) IsValid(medium, subtype string) bool {
	return t.allowed[t.Canonical(medium)][normalize(subtype)]
}

// Canonical lower-cases medium and resolves aliases.
func (t *Taxonomy) Canonical(medium string) string {
	m := normalize(medium)
	if target, ok := t.aliases[m]; ok {
		return target
	}
	return m
}

// Legacy maps an old single-field category onto a pair.
// Unknown categories map to the fallback pair with known=false.
func (t *Taxonomy) Legacy(category string) (p Pair, known bool) {
	p, known = t.legacy[normalize(category)]
	if !known {
		return t.fallback, false
	}
	return p, true
}

// LegacyCategories returns the known legacy categories, sorted.
func (t *Taxonomy) LegacyCategories() []string {
	out := make([]string, 0, len(t.legacy))
	for c := range t.legacy {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Fallback is the universal safe pair.
func (t *Taxonomy) Fallback() Pair {
	return t.fallback
}

// IsText reports whether medium carries language-tagged text.
func (t *Taxonomy) IsText(medium string) bool { return t.text[t.Canonical(medium)] }

// IsMedia reports whether medium requires attachments.
func (t *Taxonomy) IsMedia(medium string) bool { return t.media[t.Canonical(medium)] }

// IsAudio reports whether medium attachments are sniffed by magic bytes.
func (t *Taxonomy) IsAudio(medium string) bool { return t.audio[t.Canonical(medium)] }

// TextMediums returns the text mediums in declaration order.
func (t *Taxonomy) TextMediums() []string { return t.filter(t.text) }

// MediaMediums returns the media mediums in declaration order.
func (t *Taxonomy) MediaMediums() []string { return t.filter(t.media) }

func (t *Taxonomy) filter(set map[string]bool) []string {
	var out []string
	for _, m := range t.order {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}
