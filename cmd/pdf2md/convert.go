// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/internal/ledger"
	"github.com/pdiddy/pdf2md/internal/models"
	"github.com/pdiddy/pdf2md/internal/output"
	"github.com/pdiddy/pdf2md/internal/pipeline"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// newPipeline builds the collaborators for one run. Tests replace it.
var newPipeline = buildPipeline

func registerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", string(types.BackendTabula), "conversion backend: tabula or markitdown")
	f.Int("max-image-dim", 0, "downscale images whose longest side exceeds this many pixels (0 keeps native size)")
	f.Bool("ocr", false, "load the Tesseract OCR engine for scanned PDFs (requires -tags ocr)")
	f.StringSlice("ocr-lang", []string{"eng"}, "OCR languages, e.g. eng,fra")
	f.Bool("exclude-headers", true, "drop repeated page headers and footers")
	f.Bool("join-paragraphs", false, "join wrapped lines inside paragraphs")
	f.Bool("frontmatter", false, "prepend YAML frontmatter to the Markdown")
	f.String("ledger", "", "SQLite file recording each run (empty disables)")
	f.Bool("quiet", false, "suppress progress output on stderr")

	bindings := map[string]string{
		"conversion.backend":                    "backend",
		"conversion.max_image_dim":              "max-image-dim",
		"models.ocr.enabled":                    "ocr",
		"models.ocr.languages":                  "ocr-lang",
		"models.layout.exclude_headers_footers": "exclude-headers",
		"models.layout.join_paragraphs":         "join-paragraphs",
		"output.frontmatter":                    "frontmatter",
		"ledger.path":                           "ledger",
		"quiet":                                 "quiet",
	}
	for key, name := range bindings {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	p, cleanup, err := newPipeline(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = p.Run(args[0], args[1])
	return err
}

// buildPipeline wires the production collaborators from cfg. A ledger that
// cannot be opened is reported and skipped.
func buildPipeline(cfg types.Config, stdout, stderr io.Writer) (*pipeline.Pipeline, func(), error) {
	log := stderr
	if cfg.Quiet {
		log = io.Discard
	}

	conv, err := convert.New(cfg.Conversion, log)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting converter: %w", err)
	}

	p := &pipeline.Pipeline{
		Loader:    &models.Loader{Config: cfg.Models, Log: log},
		Converter: conv,
		Saver:     &output.Saver{Options: output.Options{Frontmatter: cfg.Output.Frontmatter}},
		Out:       stdout,
		Log:       log,
	}

	cleanup := func() {}
	if cfg.Ledger.Path != "" {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			fmt.Fprintf(log, "ledger: %v\n", err)
		} else {
			p.Recorder = l
			cleanup = func() { l.Close() }
		}
	}
	return p, cleanup, nil
}
