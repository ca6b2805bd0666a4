// Package metadata extracts the ---META_BEGIN---/---META_END--- block from a note body
// and parses it into core.Metadata.
//
// Parsing is two-tiered. The structured strategy reads the block as a YAML mapping; when
// that fails the LineScanner recovers best-effort values and the failure is reported as a
// *core.RecoverableParseError. Only a missing sentinel pair is fatal.
package metadata

import (
	"fmt"
	"strings"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/markup"
)

const (
	BeginSentinel = "---META_BEGIN---"
	EndSentinel   = "---META_END---"
)

// Strategy is one way of turning a sanitized metadata region into fields.
type Strategy interface {
	Name() string
	Parse(text string) (core.Metadata, error)
}

// Parser implements core.Parser.
type Parser struct {
	Primary  Strategy
	Recovery Strategy
}

var _ core.Parser = (*Parser)(nil)

// New returns a parser using the structured strategy with line scanner recovery.
func New() *Parser {
	return &Parser{Primary: StructuredParser{}, Recovery: LineScanner{}}
}

// Extract locates the first begin sentinel and the first end sentinel after it.
func (p *Parser) Extract(body string) (core.Extraction, error) {
	region, content, err := Locate(body)
	if err != nil {
		return core.Extraction{}, err
	}

	text := markup.SanitizeMetadata(region)
	ext := core.Extraction{Content: content}

	meta, perr := p.primary().Parse(text)
	if perr != nil {
		meta, _ = p.recovery().Parse(text)
		ext.Recovered = &core.RecoverableParseError{Err: perr}
	}
	if meta == nil {
		meta = make(core.Metadata)
	}
	ext.Metadata = lowerKeys(meta)
	return ext, nil
}

// Locate returns the raw region between the sentinels and the trimmed text preceding them.
func Locate(body string) (region, content string, err error) {
	begin := strings.Index(body, BeginSentinel)
	if begin < 0 {
		return "", "", &core.StructuralError{Detail: fmt.Sprintf("%s not found", BeginSentinel)}
	}
	rest := body[begin+len(BeginSentinel):]
	end := strings.Index(rest, EndSentinel)
	if end < 0 {
		return "", "", &core.StructuralError{Detail: fmt.Sprintf("%s not found after %s", EndSentinel, BeginSentinel)}
	}
	return rest[:end], strings.TrimSpace(body[:begin]), nil
}

func (p *Parser) primary() Strategy {
	if p.Primary == nil {
		return StructuredParser{}
	}
	return p.Primary
}

func (p *Parser) recovery() Strategy {
	if p.Recovery == nil {
		return LineScanner{}
	}
	return p.Recovery
}

func lowerKeys(m core.Metadata) core.Metadata {
	out := make(core.Metadata, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
