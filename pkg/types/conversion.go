// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of one pdf2md run.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// TOCEntry is one heading found in the converted Markdown.
type TOCEntry struct {
	Level int    `json:"level" yaml:"level"`
	Title string `json:"title" yaml:"title"`
}

// OCRStats counts pages that went through OCR.
type OCRStats struct {
	// Pages is the number of page images recognized successfully.
	Pages int `json:"ocr_pages" yaml:"ocr_pages"`

	// Failed is the number of page images the engine rejected.
	Failed int `json:"ocr_failed" yaml:"ocr_failed"`
}

// BlockStats counts non-text blocks carried alongside the Markdown.
type BlockStats struct {
	Images int `json:"images" yaml:"images"`
}

// ConversionMeta describes a conversion. It is written next to the Markdown
// as <stem>_meta.json.
type ConversionMeta struct {
	// Source is the base name of the input PDF.
	Source string `json:"source" yaml:"source"`

	// Filetype is always "pdf" for now.
	Filetype string `json:"filetype" yaml:"filetype"`

	// Backend names the converter that produced the text.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// Title comes from the PDF info dictionary when present.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Pages is the page count reported by the parser (0 if unknown).
	Pages int `json:"pages" yaml:"pages"`

	// Languages lists the OCR languages loaded for the run.
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`

	TOC        []TOCEntry `json:"toc" yaml:"toc"`
	OCRStats   OCRStats   `json:"ocr_stats" yaml:"ocr_stats"`
	BlockStats BlockStats `json:"block_stats" yaml:"block_stats"`

	// Warnings carries non-fatal parser messages.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Conversion is the converter's result: Markdown text, images keyed by
// file name, and metadata. It passes unmodified from converter to saver.
type Conversion struct {
	Text   string
	Images map[string][]byte
	Meta   ConversionMeta
}

// RunRecord is one row of the run ledger.
type RunRecord struct {
	Input      string           `json:"input" yaml:"input"`
	Output     string           `json:"output" yaml:"output"`
	Backend    string           `json:"backend" yaml:"backend"`
	Pages      int              `json:"pages" yaml:"pages"`
	Images     int              `json:"images" yaml:"images"`
	Status     ConversionStatus `json:"status" yaml:"status"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time        `json:"finished_at" yaml:"finished_at"`
}
