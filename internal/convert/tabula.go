// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"

	"github.com/pdiddy/pdf2md/internal/models"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// TabulaConverter converts PDFs in-process with the tabula parser. Layout
// analysis and Markdown generation happen inside tabula; this type adds
// image extraction and an OCR fallback for scanned documents.
type TabulaConverter struct {
	maxImageDim int
}

// NewTabulaConverter creates a tabula-backed converter.
func NewTabulaConverter(cfg types.ConversionConfig) *TabulaConverter {
	return &TabulaConverter{maxImageDim: cfg.MaxImageDim}
}

// Convert parses the PDF at pdfPath and returns its Markdown, page images,
// and metadata. When the text layer is empty and the model set carries an
// OCR engine, the page images are recognized and used as the body.
func (t *TabulaConverter) Convert(pdfPath string, m *models.Set) (types.Conversion, error) {
	r, err := reader.Open(pdfPath)
	if err != nil {
		return types.Conversion{}, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer r.Close()

	ext := tabula.FromReader(r)
	layout := m.Layout()
	if layout.ExcludeHeadersFooters {
		ext = ext.ExcludeHeadersAndFooters()
	}
	if layout.JoinParagraphs {
		ext = ext.JoinParagraphs()
	}

	md, warnings, err := ext.ToMarkdown()
	if err != nil {
		return types.Conversion{}, fmt.Errorf("extracting markdown from %s: %w", pdfPath, err)
	}

	conv := types.Conversion{Images: map[string][]byte{}}
	for _, w := range warnings {
		conv.Meta.Warnings = append(conv.Meta.Warnings, w.Message)
	}
	conv.Meta.Title = documentTitle(r)

	pageCount, err := r.PageCount()
	if err != nil {
		return types.Conversion{}, fmt.Errorf("counting pages in %s: %w", pdfPath, err)
	}
	conv.Meta.Pages = pageCount

	var names []string
	for i := 0; i < pageCount; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			conv.Meta.Warnings = append(conv.Meta.Warnings, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		imgs, err := r.ExtractPageImages(page)
		if err != nil {
			conv.Meta.Warnings = append(conv.Meta.Warnings, fmt.Sprintf("page %d images: %v", i+1, err))
			continue
		}
		// XObject names come out of a map.
		sort.Slice(imgs, func(a, b int) bool { return imgs[a].Name < imgs[b].Name })
		for _, img := range imgs {
			name, data, err := encodePageImage(i+1, img, t.maxImageDim)
			if err != nil {
				conv.Meta.Warnings = append(conv.Meta.Warnings,
					fmt.Sprintf("page %d image %s: %v", i+1, img.Name, err))
				continue
			}
			conv.Images[name] = data
			names = append(names, name)
		}
	}

	body := strings.TrimSpace(md)
	if body == "" && m.OCR() != nil {
		body = recognizeImages(m.OCR(), names, conv.Images, &conv.Meta.OCRStats)
	}
	conv.Text = appendImageRefs(body, names)

	finish(&conv, pdfPath, types.BackendTabula, m)
	return conv, nil
}

// encodePageImage names an extracted image and encodes it for disk. JPEG and
// JPEG 2000 streams are kept in their original encoding.
func encodePageImage(page int, img reader.PageImage, maxDim int) (string, []byte, error) {
	base := fmt.Sprintf("_page_%d_%s", page, safeName(img.Name))

	switch img.Filter {
	case "DCTDecode", "DCT":
		data, err := downscale(img.Data, maxDim)
		if err != nil {
			return "", nil, err
		}
		return base + ".jpg", data, nil
	case "JPXDecode":
		return base + ".jp2", img.Data, nil
	}

	data, err := img.ToPNG()
	if err != nil {
		return "", nil, fmt.Errorf("encoding PNG: %w", err)
	}
	data, err = downscale(data, maxDim)
	if err != nil {
		return "", nil, err
	}
	return base + ".png", data, nil
}

// safeName keeps letters, digits, dash and underscore from an XObject name.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}

// recognizeImages runs OCR over the named images in order and joins the
// recognized text with blank lines.
func recognizeImages(rec models.Recognizer, names []string, images map[string][]byte, stats *types.OCRStats) string {
	var parts []string
	for _, name := range names {
		text, err := rec.RecognizeImage(images[name])
		if err != nil {
			stats.Failed++
			continue
		}
		stats.Pages++
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func documentTitle(r *reader.Reader) string {
	info, err := r.GetInfo()
	if err != nil || info == nil {
		return ""
	}
	if s, ok := info.GetString("Title"); ok {
		return strings.TrimSpace(string(s))
	}
	return ""
}
