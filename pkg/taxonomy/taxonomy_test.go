package taxonomy

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	tax := Default()

	want := []string{"audio", "writing", "drawing", "sculpture", "other"}
	got := tax.Mediums()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected mediums %v, got %v", want, got)
	}

	if fb := tax.Fallback(); fb.Medium != "other" || fb.Subtype != "other" {
		t.Errorf("expected fallback other/other, got %s", fb)
	}

	tests := []struct {
		medium, subtype string
		valid           bool
	}{
		{"writing", "poem", true},
		{"Writing", " POEM ", true},
		{"music", "vocal", true},
		{"audio", "song", true},
		{"drawing", "poem", false},
		{"painting", "other", false},
		{"other", "other", true},
	}
	for _, tc := range tests {
		if got := tax.IsValid(tc.medium, tc.subtype); got != tc.valid {
			t.Errorf("IsValid(%q, %q) = %v, want %v", tc.medium, tc.subtype, got, tc.valid)
		}
	}
}

func TestLegacy(t *testing.T) {
	tax := Default()

	tests := []struct {
		category string
		want     Pair
		known    bool
	}{
		{"poetry", Pair{"writing", "poem"}, true},
		{"PoEtRy", Pair{"writing", "poem"}, true},
		{"prosepoetry", Pair{"writing", "poem"}, true},
		{"prose", Pair{"writing", "prose"}, true},
		{"music", Pair{"audio", "song"}, true},
		{"sculpture", Pair{"sculpture", "clay"}, true},
		{"drawing", Pair{"drawing", "marker"}, true},
		{"image", Pair{"drawing", "digital"}, true},
		{"painting", Pair{"other", "other"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.category, func(t *testing.T) {
			got, known := tax.Legacy(tc.category)
			if got != tc.want || known != tc.known {
				t.Errorf("Legacy(%q) = %s,%v want %s,%v", tc.category, got, known, tc.want, tc.known)
			}
			if !tax.IsValid(got.Medium, got.Subtype) {
				t.Errorf("legacy target %s is not a valid pair", got)
			}
		})
	}
}

func TestRoles(t *testing.T) {
	tax := Default()

	if !tax.IsText("writing") || !tax.IsText("music") || tax.IsText("drawing") {
		t.Error("unexpected text roles")
	}
	if !tax.IsMedia("sculpture") || !tax.IsMedia("other") || tax.IsMedia("audio") {
		t.Error("unexpected media roles")
	}
	if !tax.IsAudio("audio") || tax.IsAudio("writing") {
		t.Error("unexpected audio roles")
	}
	if got := strings.Join(tax.TextMediums(), ","); got != "audio,writing" {
		t.Errorf("TextMediums = %s", got)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"no mediums mapping": "mediums: [a, b]\nfallback: [a, a]\n",
		"empty subtypes":     "mediums:\n  other: []\nfallback: [other, other]\n",
		"bad fallback":       "mediums:\n  other: [other]\nfallback: [writing, poem]\n",
		"bad legacy":         "mediums:\n  other: [other]\nfallback: [other, other]\nlegacy:\n  poetry: [writing, poem]\n",
		"bad alias":          "mediums:\n  other: [other]\nfallback: [other, other]\naliases:\n  music: audio\n",
		"bad role":           "mediums:\n  other: [other]\nfallback: [other, other]\nroles:\n  text: [writing]\n",
		"not yaml":           "mediums: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoad_Custom(t *testing.T) {
	doc := `
mediums:
  photo: [film, digital, other]
  other: [other]
legacy:
  snapshot: [photo, digital]
fallback: [other, other]
roles:
  media: [photo, other]
`
	tax, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := tax.Subtypes("photo"); len(got) != 3 || got[0] != "film" {
		t.Errorf("unexpected subtypes %v", got)
	}
	if p, _ := tax.Legacy("snapshot"); p != (Pair{"photo", "digital"}) {
		t.Errorf("unexpected legacy pair %s", p)
	}
	if !tax.IsMedia("photo") || tax.IsText("photo") {
		t.Error("unexpected roles for custom table")
	}
}

func TestLegacyCategories(t *testing.T) {
	tax := Default()
	cats := tax.LegacyCategories()
	if len(cats) == 0 {
		t.Fatal("expected legacy categories")
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1] > cats[i] {
			t.Errorf("categories not sorted: %v", cats)
		}
	}
	for _, c := range cats {
		if _, known := tax.Legacy(c); !known {
			t.Errorf("listed category %q is not known", c)
		}
	}
}
