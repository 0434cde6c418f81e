// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2md/internal/models"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// fakeRuntime implements container.Runtime for testing.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
	gotInput string
	gotImage string
	gotArgs  []string
}

func (f *fakeRuntime) Name() string             { return "docker" }
func (f *fakeRuntime) Available() bool          { return true }
func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }

func (f *fakeRuntime) Run(image string, toolArgs []string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage, f.gotArgs = image, toolArgs
	data, _ := io.ReadAll(stdin)
	f.gotInput = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := stdout.Write([]byte(f.output))
	return err
}

type fakeRecognizer struct {
	texts map[int]string // call index -> text
	fail  map[int]bool
	calls int
}

func (f *fakeRecognizer) RecognizeImage([]byte) (string, error) {
	i := f.calls
	f.calls++
	if f.fail[i] {
		return "", errors.New("tesseract: empty page")
	}
	return f.texts[i], nil
}

func (f *fakeRecognizer) Close() error { return nil }

// setupPDF writes a placeholder file; the markitdown fake never parses it.
func setupPDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "2301.07041.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 fake"), 0o644))
	return p
}

func loadSet(t *testing.T) *models.Set {
	t.Helper()
	s, err := models.Load(types.ModelConfig{}, nil)
	require.NoError(t, err)
	return s
}

func TestMarkitdownConverter(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		wantErr string
	}{
		{
			name: "successful conversion",
			rt:   &fakeRuntime{output: "# Attention\n\n## Method\n\nText."},
		},
		{
			name:    "container failure",
			rt:      &fakeRuntime{runErr: errors.New("container crashed")},
			wantErr: "converting",
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{output: " \n\t"},
			wantErr: "empty output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf := setupPDF(t)
			c, err := NewMarkitdownConverter(tt.rt)
			require.NoError(t, err)

			conv, err := c.Convert(pdf, loadSet(t))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "markitdown:latest", tt.rt.gotImage)
			assert.Equal(t, []string{"--extension", "pdf"}, tt.rt.gotArgs)
			assert.Equal(t, "%PDF-1.4 fake", tt.rt.gotInput)
			assert.Equal(t, tt.rt.output, conv.Text)
			assert.Empty(t, conv.Images)
			assert.NotNil(t, conv.Images)
			assert.Equal(t, "2301.07041.pdf", conv.Meta.Source)
			assert.Equal(t, "pdf", conv.Meta.Filetype)
			assert.Equal(t, types.BackendMarkitdown, conv.Meta.Backend)
			assert.Equal(t, []types.TOCEntry{{Level: 1, Title: "Attention"}, {Level: 2, Title: "Method"}}, conv.Meta.TOC)
		})
	}
}

func TestNewMarkitdownConverter_MissingImage(t *testing.T) {
	_, err := NewMarkitdownConverter(&fakeRuntime{imageErr: errors.New("no such image")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown image not available in docker")
}

func TestConverters_MissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.pdf")

	mk, err := NewMarkitdownConverter(&fakeRuntime{output: "x"})
	require.NoError(t, err)

	for name, c := range map[string]Converter{
		"tabula":     NewTabulaConverter(types.ConversionConfig{}),
		"markitdown": mk,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Convert(missing, loadSet(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "nope.pdf")
		})
	}
}

func TestNew(t *testing.T) {
	var log bytes.Buffer
	c, err := New(types.ConversionConfig{}, &log)
	require.NoError(t, err)
	assert.IsType(t, &TabulaConverter{}, c)
	assert.Contains(t, log.String(), "tabula")

	c, err = New(types.ConversionConfig{Backend: types.BackendTabula, MaxImageDim: 800}, nil)
	require.NoError(t, err)
	assert.Equal(t, 800, c.(*TabulaConverter).maxImageDim)

	_, err = New(types.ConversionConfig{Backend: "grobid"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown conversion backend "grobid"`)
}

func TestTableOfContents(t *testing.T) {
	md := "# Title *with* `code`\n\nintro\n\nSetext Heading\n--------------\n\n" +
		"```\n# not a heading\n```\n\n### Deep\n\n#\n"
	got := TableOfContents(md)
	assert.Equal(t, []types.TOCEntry{
		{Level: 1, Title: "Title with code"},
		{Level: 2, Title: "Setext Heading"},
		{Level: 3, Title: "Deep"},
	}, got)

	assert.Empty(t, TableOfContents("plain paragraph"))
}

func TestAppendImageRefs(t *testing.T) {
	assert.Equal(t, "body", appendImageRefs("body", nil))
	assert.Equal(t, "body\n\n![](_page_1_Im1.png)\n\n![](_page_2_Im0.jpg)\n",
		appendImageRefs("body", []string{"_page_1_Im1.png", "_page_2_Im0.jpg"}))
	assert.Equal(t, "![](_page_1_Im1.png)\n", appendImageRefs("", []string{"_page_1_Im1.png"}))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "Im1", safeName("Im1"))
	assert.Equal(t, "a_b_c", safeName("a/b.c"))
	assert.Equal(t, "image", safeName(""))
}

func TestRecognizeImages(t *testing.T) {
	rec := &fakeRecognizer{
		texts: map[int]string{0: " page one \n", 2: "page three"},
		fail:  map[int]bool{1: true},
	}
	names := []string{"_page_1_Im0.png", "_page_2_Im0.png", "_page_3_Im0.png"}
	images := map[string][]byte{names[0]: {1}, names[1]: {2}, names[2]: {3}}

	var stats types.OCRStats
	got := recognizeImages(rec, names, images, &stats)

	assert.Equal(t, "page one\n\npage three", got)
	assert.Equal(t, types.OCRStats{Pages: 2, Failed: 1}, stats)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownscale(t *testing.T) {
	src := encodePNG(t, 400, 100)

	same, err := downscale(src, 0)
	require.NoError(t, err)
	assert.Equal(t, src, same)

	fits, err := downscale(src, 400)
	require.NoError(t, err)
	assert.Equal(t, src, fits)

	small, err := downscale(src, 200)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	_, err = downscale([]byte("not an image"), 10)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reading image header"))
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{400, 100, 200, 200, 50},
		{100, 400, 200, 50, 200},
		{300, 300, 150, 150, 150},
		{1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := scaledSize(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
