// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package models loads the model set the converters depend on: layout
// settings for the native parser and, when enabled, a Tesseract OCR engine.
// A Set is loaded once per run and closed when the run ends.
package models

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pdf2md/pkg/types"
)

const (
	defaultLanguage    = "eng"
	defaultPageSegMode = 3
)

// Recognizer turns an encoded image (PNG, JPEG, TIFF) into text.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
	Close() error
}

// Set is the opaque bundle handed from the loader to a converter.
type Set struct {
	layout    types.LayoutConfig
	languages []string
	ocr       Recognizer
}

// NewSet assembles a Set from parts that are already loaded. A nil ocr
// leaves OCR disabled.
func NewSet(layout types.LayoutConfig, ocr Recognizer, languages []string) *Set {
	s := &Set{layout: layout, ocr: ocr}
	if ocr != nil {
		s.languages = languages
	}
	return s
}

// Layout returns the layout-analysis settings.
func (s *Set) Layout() types.LayoutConfig {
	if s == nil {
		return types.LayoutConfig{}
	}
	return s.layout
}

// OCR returns the loaded OCR engine, or nil when OCR is disabled.
func (s *Set) OCR() Recognizer {
	if s == nil {
		return nil
	}
	return s.ocr
}

// Languages returns the OCR languages, empty when OCR is disabled.
func (s *Set) Languages() []string {
	if s == nil || s.ocr == nil {
		return nil
	}
	return s.languages
}

// Close releases the OCR engine. It is safe to call on a nil Set.
func (s *Set) Close() error {
	if s == nil || s.ocr == nil {
		return nil
	}
	err := s.ocr.Close()
	s.ocr = nil
	return err
}

// Loader loads a Set from configuration, reporting progress to Log.
type Loader struct {
	Config types.ModelConfig
	Log    io.Writer
}

// Load builds the model set.
func (l *Loader) Load() (*Set, error) {
	return Load(l.Config, l.Log)
}

// Load builds a Set from cfg. When cfg.OCR.Enabled is false the set carries
// layout settings only and never touches Tesseract.
func Load(cfg types.ModelConfig, w io.Writer) (*Set, error) {
	if w == nil {
		w = io.Discard
	}

	fmt.Fprintf(w, "models: layout (exclude headers/footers=%t, join paragraphs=%t)\n",
		cfg.Layout.ExcludeHeadersFooters, cfg.Layout.JoinParagraphs)

	if !cfg.OCR.Enabled {
		return NewSet(cfg.Layout, nil, nil), nil
	}

	langs := normalizeLanguages(cfg.OCR.Languages)
	psm := cfg.OCR.PageSegMode
	if psm <= 0 {
		psm = defaultPageSegMode
	}

	rec, err := newRecognizer(langs, psm)
	if err != nil {
		return nil, fmt.Errorf("loading OCR engine: %w", err)
	}
	fmt.Fprintf(w, "models: ocr (languages=%s, psm=%d)\n", strings.Join(langs, "+"), psm)
	return NewSet(cfg.Layout, rec, langs), nil
}

// normalizeLanguages accepts both list entries and "eng+fra" style values.
func normalizeLanguages(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		for _, lang := range strings.Split(v, "+") {
			lang = strings.TrimSpace(lang)
			if lang == "" || seen[lang] {
				continue
			}
			seen[lang] = true
			out = append(out, lang)
		}
	}
	if len(out) == 0 {
		return []string{defaultLanguage}
	}
	return out
}
