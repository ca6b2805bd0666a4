package classify

import (
	"strings"
	"testing"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/taxonomy"
)

func newClassifier() *Classifier {
	return New(nil, DefaultHeuristics())
}

func TestClassify_ExplicitPair(t *testing.T) {
	tests := []struct {
		name         string
		meta         core.Metadata
		wantMedium   string
		wantSubtype  string
		wantWarnings int
	}{
		{"Valid", core.Metadata{"medium": "writing", "subtype": "poem"}, "writing", "poem", 0},
		{"Case Folded", core.Metadata{"medium": " Writing ", "subtype": "POEM"}, "writing", "poem", 0},
		{"Alias Canonicalized", core.Metadata{"medium": "music", "subtype": "song"}, "audio", "song", 0},
		{"Invalid Subtype", core.Metadata{"medium": "writing", "subtype": "clay"}, "other", "other", 1},
		{"Unknown Medium", core.Metadata{"medium": "dance", "subtype": "ballet"}, "other", "other", 1},
		{"Explicit Beats Category", core.Metadata{"medium": "drawing", "subtype": "ink", "category": "poetry"}, "drawing", "ink", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, warnings := newClassifier().Classify(tc.meta, "", nil)
			if got["medium"] != tc.wantMedium || got["subtype"] != tc.wantSubtype {
				t.Errorf("got %v/%v, want %s/%s", got["medium"], got["subtype"], tc.wantMedium, tc.wantSubtype)
			}
			if len(warnings) != tc.wantWarnings {
				t.Errorf("got %d warnings, want %d: %v", len(warnings), tc.wantWarnings, warnings)
			}
		})
	}
}

func TestClassify_LegacyCategory(t *testing.T) {
	tests := []struct {
		category string
		want     string
		warns    bool
	}{
		{"poetry", "writing/poem", false},
		{"ProsePoetry", "writing/poem", false},
		{"prose", "writing/prose", false},
		{"music", "audio/song", false},
		{"sculpture", "sculpture/clay", false},
		{"drawing", "drawing/marker", false},
		{"image", "drawing/digital", false},
		{"other", "other/other", false},
		{"collage", "other/other", true},
	}
	for _, tc := range tests {
		t.Run(tc.category, func(t *testing.T) {
			got, warnings := newClassifier().Classify(core.Metadata{"category": tc.category}, "", nil)
			if pair := got.String("medium") + "/" + got.String("subtype"); pair != tc.want {
				t.Errorf("category %q = %s, want %s", tc.category, pair, tc.want)
			}
			if (len(warnings) > 0) != tc.warns {
				t.Errorf("warnings = %v", warnings)
			}
		})
	}
}

func TestClassify_AutoDetect(t *testing.T) {
	poem := "<div>the moon</div><div>a silver coin</div><div>spent on</div><div>the dark</div>"
	prose := "<div>" + strings.Repeat("This is a rather long sentence that keeps on going. ", 12) + "</div>"

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"Music Keyword", "<div>Verse one, then the Chorus and the CHORD changes</div>", "audio/vocal"},
		{"Short Lines", poem, "writing/poem"},
		{"Long Form", prose, "writing/prose"},
		{"Nothing", "<div>short note</div>", "writing/other"},
		{"Empty", "", "writing/other"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, warnings := newClassifier().Classify(core.Metadata{"title": "x"}, tc.content, nil)
			if pair := got.String("medium") + "/" + got.String("subtype"); pair != tc.want {
				t.Errorf("detected %s, want %s", pair, tc.want)
			}
			if len(warnings) != 2 {
				t.Fatalf("expected a warning per detected field, got %v", warnings)
			}
			if want := "auto-detected medium: " + got.String("medium") + " "; !strings.HasPrefix(warnings[0], want) {
				t.Errorf("medium warning %q should name the stored medium %q", warnings[0], got.String("medium"))
			}
			if got["category"] != "other" {
				t.Errorf("category = %v, want other", got["category"])
			}
		})
	}
}

func TestClassify_PartialPairDetectsMissingField(t *testing.T) {
	got, warnings := newClassifier().Classify(core.Metadata{"medium": "drawing"}, "<div>sketch</div>", nil)
	if got["medium"] != "drawing" || got["subtype"] != "other" {
		t.Errorf("got %v/%v, want drawing/other", got["medium"], got["subtype"])
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}

	got, _ = newClassifier().Classify(core.Metadata{"subtype": "poem"}, "", nil)
	if got["medium"] != "writing" || got["subtype"] != "poem" {
		t.Errorf("got %v/%v, want writing/poem", got["medium"], got["subtype"])
	}

	got, warnings = newClassifier().Classify(core.Metadata{"subtype": "clay"}, "", nil)
	if got["medium"] != "other" || got["subtype"] != "other" {
		t.Errorf("got %v/%v, want the fallback pair", got["medium"], got["subtype"])
	}
	if len(warnings) != 2 {
		t.Errorf("expected detection and fallback warnings, got %v", warnings)
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	in := core.Metadata{"category": "poetry"}
	newClassifier().Classify(in, "", nil)
	if in.Has("medium") {
		t.Error("input metadata was mutated")
	}
}

func TestClassify_AlwaysValid(t *testing.T) {
	tax := taxonomy.Default()
	inputs := []core.Metadata{
		{},
		{"medium": ""},
		{"medium": "audio"},
		{"subtype": "beat"},
		{"medium": "AUDIO", "subtype": "Beat"},
		{"medium": "writing", "subtype": "song"},
		{"category": ""},
		{"category": "???"},
		{"medium": nil, "subtype": nil, "category": nil},
		{"medium": 3, "subtype": 4},
	}
	c := New(tax, DefaultHeuristics())
	for _, in := range inputs {
		got, _ := c.Classify(in, "<div>some words</div>", []core.Resource{{MIME: "image/png"}})
		if !tax.IsValid(got.String("medium"), got.String("subtype")) {
			t.Errorf("Classify(%v) produced invalid pair %v/%v", in, got["medium"], got["subtype"])
		}
	}
}

func TestDetect_MediaTypesDoNotDecide(t *testing.T) {
	d := DefaultHeuristics().Detect("<div>hi</div>", []core.Resource{{MIME: "image/JPEG"}, {MIME: ""}})
	if d.Pair.String() != "writing/other" {
		t.Errorf("pair = %s, want writing/other", d.Pair)
	}
	if len(d.MediaTypes) != 1 || d.MediaTypes[0] != "image/jpeg" {
		t.Errorf("media types = %v", d.MediaTypes)
	}
}

func TestDetect_CustomThresholds(t *testing.T) {
	h := Heuristics{MinLines: 1, MaxMeanLineLength: 100, LongFormLength: 10}
	if d := h.Detect("<div>a line</div><div>another line</div>", nil); d.Pair.String() != "writing/poem" {
		t.Errorf("pair = %s, want writing/poem", d.Pair)
	}
	if d := h.Detect("<div>exactly one long line</div>", nil); d.Pair.String() != "writing/prose" {
		t.Errorf("pair = %s, want writing/prose", d.Pair)
	}
}
