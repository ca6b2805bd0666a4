package attachment

import (
	"testing"

	"github.com/artwall/harvest/pkg/core"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"Midi", []byte("MThd\x00\x00\x00\x06"), ".midi"},
		{"ID3 Tag", []byte("ID3\x04\x00"), ".mp3"},
		{"Mpeg Frame Sync", []byte{0xFF, 0xFB, 0x90, 0x00}, ".mp3"},
		{"Riff Wave", []byte("RIFF\x24\x08\x00\x00WAVEfmt "), ".wav"},
		{"Riff Without Wave", []byte("RIFF\x24\x08\x00\x00AVI LIST"), ""},
		{"Ogg", []byte("OggS\x00\x02"), ".ogg"},
		{"Flac", []byte("fLaC\x00\x00\x00\x22"), ".flac"},
		{"Adts Aac", []byte{0xFF, 0xF1, 0x50, 0x80}, ".aac"},
		{"M4A", []byte("\x00\x00\x00\x20ftypM4A \x00"), ".m4a"},
		{"Short", []byte{0xFF}, ""},
		{"Empty", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Sniff(tc.data)
			if got != tc.want || ok != (tc.want != "") {
				t.Errorf("Sniff() = (%q, %v), want %q", got, ok, tc.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	wav := []byte("RIFF\x24\x08\x00\x00WAVEfmt ")
	tests := []struct {
		name   string
		res    core.Resource
		medium string
		want   string
	}{
		{"Audio Ignores Declared Mime", core.Resource{MIME: "audio/mpeg", FileName: "take.mp3", Data: wav}, "audio", ".wav"},
		{"Music Alias Sniffs Too", core.Resource{MIME: "audio/mpeg", Data: wav}, "music", ".wav"},
		{"Unknown Audio Is Generic", core.Resource{MIME: "audio/mpeg", Data: []byte("junk")}, "audio", ".dat"},
		{"File Name Wins For Images", core.Resource{MIME: "image/png", FileName: "Scan.JPEG"}, "drawing", ".jpeg"},
		{"Mime When No File Name", core.Resource{MIME: "image/png"}, "drawing", ".png"},
		{"Mime When Suffix Is Junk", core.Resource{MIME: "image/gif", FileName: "scan.final version"}, "drawing", ".gif"},
		{"Quicktime", core.Resource{MIME: "video/quicktime"}, "other", ".mov"},
		{"Audio Mime On Non Audio Medium", core.Resource{MIME: "audio/x-unknown"}, "other", ".mp3"},
		{"Nothing Known", core.Resource{MIME: "application/octet-stream"}, "sculpture", ".dat"},
	}
	c := New(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Extension(tc.res, tc.medium); got != tc.want {
				t.Errorf("Extension() = %q, want %q", got, tc.want)
			}
		})
	}
}
