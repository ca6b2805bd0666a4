// Package enex reads note-export archives (.enex) and feeds them to the pipeline.
package enex

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/artwall/harvest/pkg/core"
)

var (
	noteChunk  = regexp.MustCompile(`(?s)<note>.*?</note>`)
	chunkTitle = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ReadArchive reads every note of an archive.
//
// When the document as a whole is not well-formed each <note> element is parsed on its
// own, so one broken note does not lose the rest; broken notes are returned as failures.
// An error is returned only when nothing at all can be read.
func ReadArchive(name string, r io.Reader) ([]core.Note, []core.Failure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err == nil {
		nodes, qerr := xmlquery.QueryAll(doc, "//note")
		if qerr != nil {
			return nil, nil, fmt.Errorf("querying %s: %w", name, qerr)
		}
		return collect(name, nodes, nil)
	}

	chunks := noteChunk.FindAll(data, -1)
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	var nodes []*xmlquery.Node
	var failures []core.Failure
	for i, chunk := range chunks {
		nd, cerr := xmlquery.Parse(bytes.NewReader(chunk))
		if cerr != nil {
			failures = append(failures, brokenNote(name, i, chunk, cerr))
			continue
		}
		n, _ := xmlquery.Query(nd, "//note")
		if n == nil {
			failures = append(failures, brokenNote(name, i, chunk, fmt.Errorf("no note element")))
			continue
		}
		nodes = append(nodes, n)
	}
	return collect(name, nodes, failures)
}

func collect(name string, nodes []*xmlquery.Node, failures []core.Failure) ([]core.Note, []core.Failure, error) {
	notes := make([]core.Note, 0, len(nodes))
	for i, n := range nodes {
		note, err := readNote(n)
		note.Archive, note.Index = name, i
		if err != nil {
			failures = append(failures, core.Failure{
				Title:   note.Title,
				Archive: name,
				Kind:    core.KindArchive,
				Reason:  err.Error(),
			})
			continue
		}
		notes = append(notes, note)
	}
	return notes, failures, nil
}

func readNote(n *xmlquery.Node) (core.Note, error) {
	note := core.Note{
		Title: strings.TrimSpace(childText(n, "title")),
		Body:  childText(n, "content"),
	}

	resources, err := xmlquery.QueryAll(n, "resource")
	if err != nil {
		return note, err
	}
	for i, rn := range resources {
		raw := whitespace.ReplaceAllString(childText(rn, "data"), "")
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return note, fmt.Errorf("resource %d: invalid base64 payload: %w", i+1, err)
		}
		note.Resources = append(note.Resources, core.Resource{
			MIME:     strings.TrimSpace(childText(rn, "mime")),
			FileName: strings.TrimSpace(childText(rn, "resource-attributes/file-name")),
			Data:     data,
		})
	}
	return note, nil
}

func childText(n *xmlquery.Node, expr string) string {
	c, err := xmlquery.Query(n, expr)
	if err != nil || c == nil {
		return ""
	}
	return c.InnerText()
}

func brokenNote(archive string, i int, chunk []byte, err error) core.Failure {
	title := fmt.Sprintf("note %d", i+1)
	if m := chunkTitle.FindSubmatch(chunk); m != nil {
		title = strings.TrimSpace(string(m[1]))
	}
	return core.Failure{
		Title:   title,
		Archive: archive,
		Kind:    core.KindArchive,
		Reason:  fmt.Sprintf("unreadable note: %v", err),
	}
}
