// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-Markdown conversion with pluggable backends.
// A backend receives the PDF path and the loaded model set and returns the
// Markdown text, the extracted images, and conversion metadata.
package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/pdf2md/internal/container"
	"github.com/pdiddy/pdf2md/internal/models"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// Converter transforms a PDF file into Markdown plus images. Different
// backends (tabula, markitdown) implement this interface.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the conversion result.
	Convert(pdfPath string, m *models.Set) (types.Conversion, error)
}

// New returns the converter selected by cfg.Backend. An empty backend
// selects tabula.
func New(cfg types.ConversionConfig, w io.Writer) (Converter, error) {
	if w == nil {
		w = io.Discard
	}
	switch cfg.Backend {
	case "", types.BackendTabula:
		fmt.Fprintln(w, "convert: using tabula backend")
		return NewTabulaConverter(cfg), nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "convert: using markitdown backend via %s\n", rt.Name())
		return NewMarkitdownConverter(rt)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q (want %s or %s)",
			cfg.Backend, types.BackendTabula, types.BackendMarkitdown)
	}
}

// finish fills the metadata every backend shares.
func finish(c *types.Conversion, pdfPath string, backend types.ConversionBackend, m *models.Set) {
	if c.Images == nil {
		c.Images = map[string][]byte{}
	}
	c.Meta.Source = filepath.Base(pdfPath)
	c.Meta.Filetype = "pdf"
	c.Meta.Backend = backend
	c.Meta.Languages = m.Languages()
	c.Meta.TOC = TableOfContents(c.Text)
	c.Meta.BlockStats.Images = len(c.Images)
}

// appendImageRefs links each image at the end of the document, in the
// order the images were extracted.
func appendImageRefs(body string, names []string) string {
	if len(names) == 0 {
		return body
	}
	var b strings.Builder
	b.WriteString(body)
	for _, name := range names {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "![](%s)", name)
	}
	b.WriteString("\n")
	return b.String()
}

// TableOfContents lists the headings of a Markdown document in order.
func TableOfContents(markdown string) []types.TOCEntry {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	toc := []types.TOCEntry{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if title := strings.TrimSpace(inlineText(h, src)); title != "" {
			toc = append(toc, types.TOCEntry{Level: h.Level, Title: title})
		}
		return ast.WalkSkipChildren, nil
	})
	return toc
}

// inlineText flattens the inline children of n into plain text.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(inlineText(c, src))
		}
	}
	return b.String()
}
