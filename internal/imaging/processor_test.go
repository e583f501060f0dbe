// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"image/gif", true},
		{"image/webp", true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := IsImage(tt.mimeType); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, createTestImage(10, 10), nil); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, createTestImage(10, 10)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", jpegBuf.Bytes(), "jpeg"},
		{"png", pngBuf.Bytes(), "png"},
		{"garbage", []byte("not an image"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(800, 600), nil); err != nil {
		t.Fatalf("encoding: %v", err)
	}

	result, err := p.Process(&buf, "abc-123", "photo.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Width != 800 || result.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", result.Width, result.Height)
	}
	if result.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q", result.MimeType)
	}
	if result.Size <= 0 {
		t.Error("Size should be positive")
	}

	for _, path := range []string{result.Path, result.ThumbPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("stored file missing: %v", err)
		}
	}

	// Thumbnail must fit the bounding box.
	f, err := os.Open(result.ThumbPath)
	if err != nil {
		t.Fatalf("opening thumb: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding thumb config: %v", err)
	}
	if cfg.Width > ThumbWidth || cfg.Height > ThumbHeight {
		t.Errorf("thumb = %dx%d, exceeds %dx%d", cfg.Width, cfg.Height, ThumbWidth, ThumbHeight)
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.Process(bytes.NewReader([]byte("plain text")), "id", "file.txt")
	if err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestSaveRejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.save("../outside", "f.jpg", []byte("x")); err == nil {
		t.Error("expected error for traversal subdir")
	}
	if _, err := p.save("originals/id", "..", []byte("x")); err == nil {
		t.Error("expected error for invalid filename")
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(100, 100), nil); err != nil {
		t.Fatalf("encoding: %v", err)
	}
	result, err := p.Process(&buf, "del-1", "photo.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if err := p.Delete("del-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(result.Path); !os.IsNotExist(err) {
		t.Error("original should be removed")
	}
	if _, err := os.Stat(filepath.Dir(result.ThumbPath)); !os.IsNotExist(err) {
		t.Error("thumb dir should be removed")
	}
}
