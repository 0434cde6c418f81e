// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !ocr

package models

import "errors"

// ErrOCRNotEnabled is returned when OCR is requested from a binary built
// without the "ocr" tag. Rebuild with: go build -tags ocr
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

func newRecognizer(_ []string, _ int) (Recognizer, error) {
	return nil, ErrOCRNotEnabled
}
