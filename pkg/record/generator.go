package record

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/artwall/harvest/pkg/attachment"
	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/markup"
	"github.com/artwall/harvest/pkg/taxonomy"
)

const (
	// TextExt is the extension of text records.
	TextExt = ".html"
	// DefaultLanguage is used for media notes that declare none.
	DefaultLanguage = "en"
	// DefaultExcerptLength bounds generated descriptions.
	DefaultExcerptLength = 100
)

// Generator implements core.Generator.
type Generator struct {
	tax           *taxonomy.Taxonomy
	ext           *attachment.Classifier
	excerptLength int
}

var _ core.Generator = (*Generator)(nil)

// New returns a generator. A nil taxonomy means taxonomy.Default().
func New(tax *taxonomy.Taxonomy) *Generator {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Generator{tax: tax, ext: attachment.New(tax), excerptLength: DefaultExcerptLength}
}

// Generate builds every record for a validated note.
//
// Text mediums get one text record per declared language, paired with the translation
// segment at the same position. Other mediums get a single text record. Every resource
// with a payload becomes a binary record numbered from 1 in attachment order.
func (g *Generator) Generate(in core.RecordInput) ([]core.Record, error) {
	meta := in.Metadata
	medium := g.tax.Canonical(meta.String("medium"))

	var records []core.Record
	if g.tax.IsText(medium) {
		langs := meta.Languages()
		if len(in.Segments) != len(langs) {
			return nil, &core.RecordError{Reason: fmt.Sprintf(
				"%d text blocks do not match the %d languages declared in metadata", len(in.Segments), len(langs))}
		}
		for i, lang := range langs {
			rec, err := g.text(meta, in.Segments[i].Body, lang, Filename(meta, Options{Language: lang}))
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	} else {
		lang := meta.String("language1")
		if lang == "" {
			lang = DefaultLanguage
		}
		rec, err := g.text(meta, in.Content, lang, Filename(meta, Options{}))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	attachments := 0
	for i, res := range in.Resources {
		if len(res.Data) == 0 {
			continue
		}
		records = append(records, core.Record{
			BaseName: Filename(meta, Options{Version: i + 1}),
			Ext:      g.ext.Extension(res, medium),
			Kind:     core.RecordBinary,
			Medium:   medium,
			Metadata: meta.Clone(),
			Payload:  res.Data,
		})
		attachments++
	}
	if g.tax.IsMedia(medium) && attachments == 0 {
		return nil, &core.AttachmentError{Medium: medium}
	}
	return records, nil
}

func (g *Generator) text(meta core.Metadata, content, lang, base string) (core.Record, error) {
	m := meta.Clone()
	m["language"] = lang
	if m.IsBlank("description") {
		joinLines := m.String("subtype") == "poem" || g.tax.IsAudio(m.String("medium"))
		if d := markup.Excerpt(content, g.excerptLength, joinLines); d != "" {
			m["description"] = d
		}
	}

	payload, err := Envelope(m, markup.SanitizeContent(content))
	if err != nil {
		return core.Record{}, &core.RecordError{Reason: fmt.Sprintf("encoding metadata for %s: %v", base, err)}
	}
	return core.Record{
		BaseName: base,
		Ext:      TextExt,
		Kind:     core.RecordText,
		Medium:   g.tax.Canonical(m.String("medium")),
		Language: lang,
		Metadata: m,
		Payload:  payload,
	}, nil
}

// Envelope renders metadata as a YAML front matter block followed by body.
func Envelope(meta core.Metadata, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(meta)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	buf.WriteString(body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
