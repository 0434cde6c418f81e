// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build ocr

package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ErrOCRNotEnabled is never returned by OCR-enabled builds. It exists so
// callers compile under both build tags.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// tesseract wraps a gosseract client.
type tesseract struct {
	client *gosseract.Client
}

func newRecognizer(langs []string, psm int) (Recognizer, error) {
	c := gosseract.NewClient()
	if err := c.SetLanguage(langs...); err != nil {
		c.Close()
		return nil, fmt.Errorf("set languages %v: %w", langs, err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		c.Close()
		return nil, fmt.Errorf("set page segmentation mode %d: %w", psm, err)
	}
	return &tesseract{client: c}, nil
}

func (t *tesseract) RecognizeImage(data []byte) (string, error) {
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (t *tesseract) Close() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
