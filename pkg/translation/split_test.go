package translation

import "testing"

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		codes []string
		want  []string
	}{
		{"No Delimiter", "Hello", []string{""}, []string{"Hello"}},
		{"One Delimiter", "Hello---TRANSLATION_nl---Hallo", []string{"", "nl"}, []string{"Hello", "Hallo"}},
		{"Case Insensitive", "a---translation_FR---b---Translation_De---c", []string{"", "fr", "de"}, []string{"a", "b", "c"}},
		{"Leading Delimiter", "---TRANSLATION_en---text", []string{"", "en"}, []string{"", "text"}},
		{"Adjacent Delimiters", "x---TRANSLATION_en------TRANSLATION_nl---", []string{"", "en", "nl"}, []string{"x", "", ""}},
		{"Three Letter Code Ignored", "a---TRANSLATION_eng---b", []string{""}, []string{"a---TRANSLATION_eng---b"}},
		{"Empty", "", []string{""}, []string{""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Split(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d segments, want %d", len(got), len(tc.want))
			}
			if len(got) != Count(tc.in)+1 {
				t.Errorf("segment count %d != Count()+1 (%d)", len(got), Count(tc.in)+1)
			}
			if HasTranslations(tc.in) != (len(got) > 1) {
				t.Errorf("HasTranslations() disagrees with Split()")
			}
			for i := range got {
				if got[i].Body != tc.want[i] {
					t.Errorf("segment %d body = %q, want %q", i, got[i].Body, tc.want[i])
				}
				if got[i].Code != tc.codes[i] {
					t.Errorf("segment %d code = %q, want %q", i, got[i].Code, tc.codes[i])
				}
			}
		})
	}
}

func TestJoinRoundTrip(t *testing.T) {
	bodies := []string{
		"",
		"Hello",
		"Hello---TRANSLATION_nl---Hallo",
		"<div>a</div>---translation_EN---<div>b</div>---TRANSLATION_de---c ",
		"---TRANSLATION_en------TRANSLATION_nl---",
	}
	for _, body := range bodies {
		segments := Split(body)
		if len(segments) != Count(body)+1 {
			t.Errorf("%q: %d segments for %d delimiters", body, len(segments), Count(body))
		}
		if got := Join(segments); got != body {
			t.Errorf("Join(Split(%q)) = %q", body, got)
		}
	}
}

func TestSplitterIsStateless(t *testing.T) {
	var s Splitter
	body := "a---TRANSLATION_nl---b"
	first, second := s.Split(body), s.Split(body)
	if len(first) != len(second) {
		t.Fatalf("repeated splits disagree: %d vs %d", len(first), len(second))
	}
}
