// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionBackend identifies the PDF conversion tool.
type ConversionBackend string

const (
	BackendTabula     ConversionBackend = "tabula"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// OCRConfig controls the optional OCR engine loaded into the model set.
type OCRConfig struct {
	// Enabled loads a Tesseract client. Requires a binary built with -tags ocr.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Languages lists Tesseract language codes (default ["eng"]).
	Languages []string `json:"languages" yaml:"languages" mapstructure:"languages"`

	// PageSegMode is the Tesseract page segmentation mode (default 3, fully automatic).
	PageSegMode int `json:"page_seg_mode" yaml:"page_seg_mode" mapstructure:"page_seg_mode"`
}

// LayoutConfig holds the layout-analysis switches handed to the converter.
type LayoutConfig struct {
	// ExcludeHeadersFooters drops repeated page headers and footers.
	ExcludeHeadersFooters bool `json:"exclude_headers_footers" yaml:"exclude_headers_footers" mapstructure:"exclude_headers_footers"`

	// JoinParagraphs joins wrapped lines inside a paragraph.
	JoinParagraphs bool `json:"join_paragraphs" yaml:"join_paragraphs" mapstructure:"join_paragraphs"`
}

// ModelConfig groups everything the model loader needs.
type ModelConfig struct {
	Layout LayoutConfig `json:"layout" yaml:"layout" mapstructure:"layout"`
	OCR    OCRConfig    `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the conversion tool: tabula or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MaxImageDim downscales extracted images whose longest side exceeds it.
	// Zero keeps images at their native size.
	MaxImageDim int `json:"max_image_dim" yaml:"max_image_dim" mapstructure:"max_image_dim"`
}

// OutputConfig holds settings for the markdown saver.
type OutputConfig struct {
	// Frontmatter prepends a YAML block to the saved Markdown.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter" mapstructure:"frontmatter"`
}

// LedgerConfig locates the optional SQLite run ledger.
type LedgerConfig struct {
	// Path is the database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config is the decoded pdf2md configuration (file, environment, flags).
type Config struct {
	Models     ModelConfig      `json:"models" yaml:"models" mapstructure:"models"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger" mapstructure:"ledger"`

	// Quiet suppresses progress output on stderr.
	Quiet bool `json:"quiet" yaml:"quiet" mapstructure:"quiet"`
}
