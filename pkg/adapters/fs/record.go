package fs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/adrg/frontmatter"

	"github.com/artwall/harvest/pkg/core"
)

// ReadRecord parses a text record written by the sink back into metadata and body.
func ReadRecord(path string) (core.Metadata, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return ParseRecord(data)
}

// ParseRecord splits a record envelope into its front matter and body.
func ParseRecord(data []byte) (core.Metadata, []byte, error) {
	meta := make(map[string]any)
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return core.Metadata(meta), bytes.TrimRight(body, "\n"), nil
}
