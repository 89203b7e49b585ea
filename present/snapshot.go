// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// WriteWebP encodes img as lossless WebP.
func WriteWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("present: WebP encode: %w", err)
	}
	return nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("present: PNG encode: %w", err)
	}
	return nil
}

// SaveSnapshot writes img to path, choosing the encoder from the extension
// (.webp or .png). Parent directories are created.
func SaveSnapshot(path string, img image.Image) (err error) {
	var encode func(io.Writer, image.Image) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".webp":
		encode = WriteWebP
	case ".png":
		encode = WritePNG
	default:
		return fmt.Errorf("present: unsupported snapshot format %q", ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f, img)
}
