// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one PDF-to-Markdown conversion: load the model set,
// convert the input, save the result, and report where it went.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/internal/models"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// Usage is printed when the argument count is wrong.
const Usage = "Usage: pdf2md <input_pdf_path> <output_directory>"

// ErrUsage reports a command line that cannot be run: a wrong argument
// count, or a flag error wrapped around it.
var ErrUsage = errors.New("invalid usage")

// ModelLoader builds the model set for one run.
type ModelLoader interface {
	Load() (*models.Set, error)
}

// Saver persists a conversion and returns the location it wrote to.
type Saver interface {
	Save(outputDir, fname string, c types.Conversion) (string, error)
}

// Recorder receives one record per run. Optional.
type Recorder interface {
	Record(r types.RunRecord) error
}

// Pipeline wires the collaborators of a run.
type Pipeline struct {
	Loader    ModelLoader
	Converter convert.Converter
	Saver     Saver
	Recorder  Recorder

	// Out receives the "Saved markdown to" line.
	Out io.Writer
	// Log receives progress and ledger diagnostics.
	Log io.Writer

	now func() time.Time
}

// ValidateArgs checks that exactly an input path and an output directory
// were given.
func ValidateArgs(args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return nil
}

// Run converts inputPDF into outputDir and returns the saved location.
// Stages run once each, in order; the first failure stops the run and is
// returned wrapped with the stage name.
func (p *Pipeline) Run(inputPDF, outputDir string) (string, error) {
	rec := types.RunRecord{Input: inputPDF, StartedAt: p.clock()}

	saved, conv, err := p.run(inputPDF, outputDir)
	rec.Output = saved
	rec.Backend = string(conv.Meta.Backend)
	rec.Pages = conv.Meta.Pages
	rec.Images = len(conv.Images)
	rec.Status = types.ConversionDone
	if err != nil {
		rec.Status = types.ConversionFailed
		rec.Error = err.Error()
	}
	rec.FinishedAt = p.clock()
	p.record(rec)

	if err != nil {
		return "", err
	}
	fmt.Fprintf(p.out(), "Saved markdown to: %s\n", saved)
	return saved, nil
}

func (p *Pipeline) run(inputPDF, outputDir string) (string, types.Conversion, error) {
	log := p.log()

	set, err := p.Loader.Load()
	if err != nil {
		return "", types.Conversion{}, fmt.Errorf("loading models: %w", err)
	}
	defer func() {
		if err := set.Close(); err != nil {
			fmt.Fprintf(log, "models: closing: %v\n", err)
		}
	}()

	fmt.Fprintf(log, "converting: %s\n", inputPDF)
	conv, err := p.Converter.Convert(inputPDF, set)
	if err != nil {
		return "", types.Conversion{}, fmt.Errorf("converting %s: %w", inputPDF, err)
	}
	fmt.Fprintf(log, "converted: %d page(s), %d image(s)\n", conv.Meta.Pages, len(conv.Images))

	saved, err := p.Saver.Save(outputDir, filepath.Base(inputPDF), conv)
	if err != nil {
		return "", conv, fmt.Errorf("saving markdown: %w", err)
	}
	return saved, conv, nil
}

// record writes to the ledger. Ledger failures never change the outcome.
func (p *Pipeline) record(r types.RunRecord) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.Record(r); err != nil {
		fmt.Fprintf(p.log(), "ledger: %v\n", err)
	}
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

func (p *Pipeline) log() io.Writer {
	if p.Log == nil {
		return io.Discard
	}
	return p.Log
}
