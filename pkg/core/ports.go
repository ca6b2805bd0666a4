package core

import "context"

// Extraction is the result of reading the metadata block out of a note body.
type Extraction struct {
	Metadata Metadata
	// Content is everything preceding the metadata block, trimmed.
	Content string
	// Recovered is non-nil when the structured parse failed and the line scanner was used.
	Recovered error
}

// Segment is one language slice of a note body.
type Segment struct {
	// Code is the lower-cased language code of the delimiter that opened the segment.
	// It is empty for the first segment.
	Code string
	// Marker is the delimiter text exactly as it appeared in the body.
	Marker string
	Body   string
}

// ValidationContext carries the facts the validator cannot derive from metadata alone.
type ValidationContext struct {
	HasTranslations bool
	SegmentCount    int
	HasResources    bool
}

// ValidationErrors is an ordered list of human readable rule violations.
// An empty list means the metadata is acceptable.
type ValidationErrors []string

// Err returns nil for an empty list and a *ValidationError otherwise.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Messages: append([]string(nil), v...)}
}

// RecordInput is everything the record generator needs for one validated note.
type RecordInput struct {
	Metadata  Metadata
	Content   string
	Segments  []Segment
	Resources []Resource
}

// Parser extracts and parses the metadata block of a note body.
type Parser interface {
	Extract(body string) (Extraction, error)
}

// Classifier resolves medium and subtype. It never fails; it returns warnings instead.
type Classifier interface {
	Classify(meta Metadata, content string, resources []Resource) (Metadata, []string)
}

// Validator checks every field and aggregates all violations.
type Validator interface {
	Validate(meta Metadata, vc ValidationContext) ValidationErrors
}

// Splitter divides note content into language segments.
type Splitter interface {
	Split(content string) []Segment
}

// Generator turns a validated note into records.
type Generator interface {
	Generate(in RecordInput) ([]Record, error)
}

// Sink is the record writer collaborator. Failures are not retried.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Archive is one input document and the notes read from it.
type Archive struct {
	Name  string
	Notes []Note
	// Rejected lists notes that could not even be read from the archive.
	Rejected []Failure
	// Err is set when the archive as a whole could not be used.
	Err error
}

// ArchiveSource loads every archive of a batch.
type ArchiveSource interface {
	Archives(ctx context.Context) ([]Archive, error)
}
