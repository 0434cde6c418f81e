// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output persists a conversion: the Markdown file, its images, and a
// metadata file, all inside one subfolder of the output directory.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2md/pkg/types"
)

const metaSuffix = "_meta.json"

// Options control optional parts of the saved Markdown.
type Options struct {
	// Frontmatter prepends a YAML block describing the conversion.
	Frontmatter bool

	// Now stamps converted_at in the frontmatter. Defaults to time.Now.
	Now func() time.Time
}

// Saver writes conversions with fixed options.
type Saver struct {
	Options Options
}

// Save persists c under outputDir for the source file fname.
func (s *Saver) Save(outputDir, fname string, c types.Conversion) (string, error) {
	return SaveMarkdown(outputDir, fname, c.Text, c.Images, c.Meta, s.Options)
}

// frontmatter is the YAML block prepended when Options.Frontmatter is set.
type frontmatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title,omitempty"`
	Pages       int    `yaml:"pages"`
	Backend     string `yaml:"backend"`
	ConvertedAt string `yaml:"converted_at"`
}

// SaveMarkdown writes text, images, and meta into outputDir/<stem>, where
// stem is fname without its extension, and returns that subfolder. The
// Markdown goes to <stem>.md and the metadata to <stem>_meta.json. Images are
// written under their base names; a name that is empty, refers to a parent
// directory, or matches the Markdown or metadata file is rejected before
// anything is written.
func SaveMarkdown(outputDir, fname, text string, images map[string][]byte, meta types.ConversionMeta, opts Options) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", fmt.Errorf("cannot derive output name from %q", fname)
	}

	names := make([]string, 0, len(images))
	for name := range images {
		if err := checkImageName(name, stem); err != nil {
			return "", err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	subfolder := filepath.Join(outputDir, stem)
	if err := os.MkdirAll(subfolder, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	content := text
	if opts.Frontmatter {
		var err error
		content, err = addFrontmatter(meta, text, opts.now())
		if err != nil {
			return "", err
		}
	}

	mdPath := filepath.Join(subfolder, stem+".md")
	if err := os.WriteFile(mdPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", mdPath, err)
	}

	for _, name := range names {
		p := filepath.Join(subfolder, name)
		if err := os.WriteFile(p, images[name], 0o644); err != nil {
			return "", fmt.Errorf("writing image %s: %w", p, err)
		}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	metaPath := filepath.Join(subfolder, stem+metaSuffix)
	if err := os.WriteFile(metaPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", metaPath, err)
	}

	return subfolder, nil
}

// checkImageName rejects names that would land outside the subfolder or
// overwrite the files written alongside the images.
func checkImageName(name, stem string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("invalid image name %q", name)
	}
	if name == stem+".md" || name == stem+metaSuffix {
		return fmt.Errorf("image name %q collides with the converted output", name)
	}
	return nil
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown content.
func addFrontmatter(meta types.ConversionMeta, body string, now time.Time) (string, error) {
	fm := frontmatter{
		Source:      meta.Source,
		Title:       meta.Title,
		Pages:       meta.Pages,
		Backend:     string(meta.Backend),
		ConvertedAt: now.UTC().Format(time.RFC3339),
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
