// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdiddy/pdf2md/internal/container"
	"github.com/pdiddy/pdf2md/internal/models"
	"github.com/pdiddy/pdf2md/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

// markitdownArgs hints the format of the PDF piped on stdin.
var markitdownArgs = []string{"--extension", "pdf"}

// MarkitdownConverter converts PDFs by piping them through the markitdown
// container image. It produces text only; markitdown does not export images.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter creates a converter that uses the given container
// runtime to run the markitdown image. It verifies that the markitdown image
// exists locally before returning.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert pipes the PDF at pdfPath through the markitdown container. The
// model set only contributes metadata; markitdown brings its own models.
func (m *MarkitdownConverter) Convert(pdfPath string, set *models.Set) (types.Conversion, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return types.Conversion{}, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(imageMarkitdown, markitdownArgs, f, &out); err != nil {
		return types.Conversion{}, fmt.Errorf("converting %s with markitdown: %w", pdfPath, err)
	}

	if len(bytes.TrimSpace(out.Bytes())) == 0 {
		return types.Conversion{}, fmt.Errorf("markitdown produced empty output for %s", pdfPath)
	}

	conv := types.Conversion{Text: out.String()}
	finish(&conv, pdfPath, types.BackendMarkitdown, set)
	return conv, nil
}
