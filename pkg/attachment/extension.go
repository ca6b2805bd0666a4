// Package attachment chooses file extensions for note resources.
//
// Declared MIME types in exports are unreliable for audio, so audio payloads are always
// identified by their leading bytes. Everything else trusts the declared file name, then
// the MIME type.
package attachment

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// Fallback is used when nothing identifies the payload.
const Fallback = ".dat"

type signature struct {
	ext   string
	match func(b []byte) bool
}

func prefix(p string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

func frameSync(second ...byte) func([]byte) bool {
	return func(b []byte) bool {
		return len(b) > 1 && b[0] == 0xFF && bytes.IndexByte(second, b[1]) >= 0
	}
}

// Checked in order; the first match wins.
var signatures = []signature{
	{".midi", prefix("MThd")},
	{".mp3", prefix("ID3")},
	{".mp3", frameSync(0xFB, 0xF3, 0xFA)},
	{".wav", func(b []byte) bool { return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WAVE" }},
	{".ogg", prefix("OggS")},
	{".flac", prefix("fLaC")},
	{".aac", frameSync(0xF1, 0xF9)},
	{".m4a", func(b []byte) bool { return len(b) >= 11 && string(b[4:11]) == "ftypM4A" }},
}

// Checked in order as substrings of the lower-cased MIME type.
var mimeTable = []struct{ needle, ext string }{
	{"jpeg", ".jpg"},
	{"jpg", ".jpg"},
	{"png", ".png"},
	{"gif", ".gif"},
	{"webp", ".webp"},
	{"mp3", ".mp3"},
	{"wav", ".wav"},
	{"ogg", ".ogg"},
	{"flac", ".flac"},
	{"aac", ".aac"},
	{"m4a", ".m4a"},
	{"mp4", ".mp4"},
	{"webm", ".webm"},
	{"quicktime", ".mov"},
	{"mov", ".mov"},
	{"pdf", ".pdf"},
	{"svg", ".svg"},
	{"audio", ".mp3"},
}

// Sniff identifies an audio payload by its magic bytes.
func Sniff(data []byte) (string, bool) {
	for _, s := range signatures {
		if s.match(data) {
			return s.ext, true
		}
	}
	return "", false
}

// FromFileName returns the lower-cased suffix of name when it looks like a real extension.
func FromFileName(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return "", false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", false
		}
	}
	return ext, true
}

// FromMIME maps a declared MIME type through the substring table.
func FromMIME(mime string) (string, bool) {
	mime = strings.ToLower(mime)
	if mime == "" {
		return "", false
	}
	for _, m := range mimeTable {
		if strings.Contains(mime, m.needle) {
			return m.ext, true
		}
	}
	return "", false
}

// Classifier resolves extensions against a taxonomy.
type Classifier struct {
	tax *taxonomy.Taxonomy
}

// New returns a classifier. A nil taxonomy means taxonomy.Default().
func New(tax *taxonomy.Taxonomy) *Classifier {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Classifier{tax: tax}
}

// Extension returns the extension, with leading dot, for res attached to a note of medium.
func (c *Classifier) Extension(res core.Resource, medium string) string {
	if c.tax.IsAudio(medium) {
		if ext, ok := Sniff(res.Data); ok {
			return ext
		}
		return Fallback
	}
	if ext, ok := FromFileName(res.FileName); ok {
		return ext
	}
	if ext, ok := FromMIME(res.MIME); ok {
		return ext
	}
	return Fallback
}
