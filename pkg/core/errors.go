package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these.
var (
	ErrNoMetadataBlock = errors.New("no ---META_BEGIN---/---META_END--- block found")
	ErrInvalidMetadata = errors.New("metadata could not be parsed as a mapping")
	ErrValidation      = errors.New("metadata validation failed")
	ErrNoAttachment    = errors.New("no attachment found")
	ErrRecord          = errors.New("record generation failed")
	ErrWrite           = errors.New("record write failed")
	ErrArchive         = errors.New("archive unavailable")
)

// FailureKind classifies why a note (or archive) did not produce records.
type FailureKind string

const (
	KindStructural FailureKind = "structural"
	KindValidation FailureKind = "validation"
	KindAttachment FailureKind = "attachment"
	KindRecord     FailureKind = "record"
	KindWrite      FailureKind = "write"
	KindArchive    FailureKind = "archive"
)

// StructuralError means the metadata sentinel pair is missing. Fatal to the note.
type StructuralError struct {
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", ErrNoMetadataBlock.Error(), e.Detail)
	}
	return ErrNoMetadataBlock.Error()
}

func (e *StructuralError) Unwrap() error { return ErrNoMetadataBlock }

// RecoverableParseError means the structured parse failed and the line scanner took over.
// It is only ever surfaced as a warning.
type RecoverableParseError struct {
	Err error
}

func (e *RecoverableParseError) Error() string {
	return fmt.Sprintf("structured metadata parse failed, recovered with line scanner: %v", e.Err)
}

func (e *RecoverableParseError) Unwrap() []error { return []error{ErrInvalidMetadata, e.Err} }

// ValidationError aggregates every field-level rule violation of a note.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation errors: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AttachmentError means a media-bearing note has no usable attachment.
type AttachmentError struct {
	Medium string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("medium '%s' requires an attachment but none was found", e.Medium)
}

func (e *AttachmentError) Unwrap() error { return ErrNoAttachment }

// RecordError means records could not be assembled from otherwise valid input.
type RecordError struct {
	Reason string
}

func (e *RecordError) Error() string { return e.Reason }

func (e *RecordError) Unwrap() error { return ErrRecord }

// WriteError wraps a sink failure for a single record.
type WriteError struct {
	File string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.File, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// ArchiveError reports an archive that could not be used at all.
type ArchiveError struct {
	Archive string
	Err     error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Archive, e.Err)
}

func (e *ArchiveError) Unwrap() []error { return []error{ErrArchive, e.Err} }

// KindOf maps an error onto the failure taxonomy.
func KindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNoMetadataBlock):
		return KindStructural
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNoAttachment):
		return KindAttachment
	case errors.Is(err, ErrWrite):
		return KindWrite
	case errors.Is(err, ErrArchive):
		return KindArchive
	default:
		return KindRecord
	}
}
