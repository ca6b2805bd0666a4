// Record, Outcome and Report are the outputs of the pipeline.
package core

import "sort"

// RecordKind distinguishes text records from extracted attachments.
type RecordKind string

const (
	RecordText   RecordKind = "text"
	RecordBinary RecordKind = "binary"
)

// Record is one artifact to be written. It is never mutated after creation.
type Record struct {
	BaseName string
	Ext      string
	Kind     RecordKind
	Medium   string
	Language string
	Metadata Metadata
	Payload  []byte
}

// FileName is the base name plus extension.
func (r Record) FileName() string {
	return r.BaseName + r.Ext
}

// State is the position of a note in the processing state machine.
type State string

const (
	StateExtracted      State = "extracted"
	StateMetadataParsed State = "metadata_parsed"
	StateParseFailed    State = "parse_failed"
	StateClassified     State = "classified"
	StateValidated      State = "validated"
	StateRejected       State = "rejected"
	StateRecordsEmitted State = "records_emitted"
	StateFailed         State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateParseFailed, StateRejected, StateRecordsEmitted, StateFailed:
		return true
	}
	return false
}

// Outcome is the result of processing a single note.
type Outcome struct {
	Title    string
	State    State
	Medium   string
	Subtype  string
	Records  []Record
	Warnings []string
	Err      error
}

// OK reports whether the note emitted its records.
func (o Outcome) OK() bool {
	return o.State == StateRecordsEmitted && o.Err == nil
}

// Success summarises a note that emitted records.
type Success struct {
	Title string   `json:"title"`
	Files []string `json:"files"`
}

// Failure summarises a note or archive that did not emit records.
type Failure struct {
	Title   string      `json:"title"`
	Archive string      `json:"archive,omitempty"`
	Kind    FailureKind `json:"kind"`
	Reason  string      `json:"reason"`
}

// Report is the batch outcome. Every note lands in exactly one of Success or Failed.
type Report struct {
	RunID         string         `json:"run_id"`
	Success       []Success      `json:"success"`
	Failed        []Failure      `json:"failed"`
	Warnings      []string       `json:"warnings"`
	MediumCounts  map[string]int `json:"medium_counts"`
	SubtypeCounts map[string]int `json:"subtype_counts"`
}

// NewReport returns an empty report for the given run.
func NewReport(runID string) *Report {
	return &Report{
		RunID:         runID,
		MediumCounts:  make(map[string]int),
		SubtypeCounts: make(map[string]int),
	}
}

// Total is the number of notes and archives accounted for.
func (r *Report) Total() int {
	return len(r.Success) + len(r.Failed)
}

// Mediums returns the counted mediums in sorted order.
func (r *Report) Mediums() []string {
	return sortedKeys(r.MediumCounts)
}

// Subtypes returns the counted medium/subtype keys in sorted order.
func (r *Report) Subtypes() []string {
	return sortedKeys(r.SubtypeCounts)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
