package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the parsed metadata block of a note.
// Keys are lower-cased; values are string, int or nil (key present without a value).
type Metadata map[string]any

// Note is one unit of input read from an archive.
// It is agnostic to the archive format and immutable once read.
type Note struct {
	Title     string
	Body      string
	Resources []Resource

	// Archive and Index locate the note for reporting.
	Archive string
	Index   int
}

// Resource is a binary attachment owned by a Note.
type Resource struct {
	MIME     string
	FileName string
	Data     []byte
}

// Has reports whether the key is present, regardless of its value.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the value of key rendered as a trimmed string.
// Absent keys and nil values yield "".
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// IsBlank reports whether key is absent, nil or whitespace only.
func (m Metadata) IsBlank(key string) bool {
	return m.String(key) == ""
}

// Clone returns a shallow copy; values are immutable scalars so this is a full copy.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LanguageKeys are the metadata fields declaring the languages of a note, in order.
var LanguageKeys = []string{"language1", "language2", "language3"}

// Languages returns the populated language codes, in declaration order.
func (m Metadata) Languages() []string {
	var langs []string
	for _, key := range LanguageKeys {
		if code := m.String(key); code != "" {
			langs = append(langs, code)
		}
	}
	return langs
}
