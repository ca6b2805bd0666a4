package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestTitleRegistry(t *testing.T) {
	r := NewTitleRegistry([]string{"Ode", "Song", "Ode", "Ode"})

	steps := []struct {
		in      string
		want    string
		renamed bool
	}{
		{"Ode", "Ode", false},
		{"Song", "Song", false},
		{"Ode", "Ode 2", true},
		{"Ode", "Ode 3", true},
		{"Unseen", "Unseen", false},
	}
	for i, s := range steps {
		got, renamed := r.Resolve(s.in)
		if got != s.want || renamed != s.renamed {
			t.Errorf("step %d: Resolve(%q) = %q, %v; want %q, %v", i, s.in, got, renamed, s.want, s.renamed)
		}
	}

	dups := r.Duplicates()
	if len(dups) != 1 || dups["Ode"] != 3 {
		t.Errorf("Duplicates() = %v", dups)
	}
}

func TestTitleRegistry_SkipsTakenSuffixes(t *testing.T) {
	r := NewTitleRegistry([]string{"Ode", "Ode", "Ode 2", "Ode", "Ode 3"})

	var got []string
	for _, in := range []string{"Ode", "Ode", "Ode 2", "Ode", "Ode 3"} {
		title, _ := r.Resolve(in)
		got = append(got, title)
	}
	want := []string{"Ode", "Ode 4", "Ode 2", "Ode 5", "Ode 3"}
	seen := make(map[string]bool)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("note %d resolved to %q, want %q", i, got[i], want[i])
		}
		if seen[got[i]] {
			t.Errorf("title %q handed out twice", got[i])
		}
		seen[got[i]] = true
	}
}

func TestTitleRegistry_Nil(t *testing.T) {
	var r *TitleRegistry
	if got, renamed := r.Resolve("Ode"); got != "Ode" || renamed {
		t.Errorf("nil registry should pass titles through, got %q %v", got, renamed)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want FailureKind
	}{
		{&StructuralError{Detail: "x"}, KindStructural},
		{&ValidationError{Messages: []string{"x"}}, KindValidation},
		{&AttachmentError{Medium: "drawing"}, KindAttachment},
		{&RecordError{Reason: "x"}, KindRecord},
		{&WriteError{File: "a", Err: errors.New("x")}, KindWrite},
		{&ArchiveError{Archive: "a", Err: errors.New("x")}, KindArchive},
		{fmt.Errorf("wrapped: %w", &ValidationError{}), KindValidation},
		{errors.New("anything else"), KindRecord},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationErrors_Err(t *testing.T) {
	if err := (ValidationErrors{}).Err(); err != nil {
		t.Errorf("empty list should be nil, got %v", err)
	}
	err := ValidationErrors{"a", "b"}.Err()
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err.Error() != "validation errors: a; b" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateParseFailed, StateRejected, StateRecordsEmitted, StateFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateExtracted, StateMetadataParsed, StateClassified, StateValidated} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
