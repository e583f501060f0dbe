// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded images for the admin media library:
// EXIF auto-rotation, re-encoding, and thumbnail generation.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Thumbnail dimensions for admin media grid previews.
const (
	ThumbWidth  = 400
	ThumbHeight = 300
	thumbQuality = 85
)

// Result describes a processed upload: the saved original image plus its
// thumbnail.
type Result struct {
	Path      string
	ThumbPath string
	MimeType  string
	Width     int
	Height    int
	Size      int64
}

// Processor saves uploads under a base directory.
type Processor struct {
	uploadsDir string
}

// NewProcessor creates a processor rooted at uploadsDir.
func NewProcessor(uploadsDir string) *Processor {
	return &Processor{uploadsDir: uploadsDir}
}

// Process reads an uploaded image, auto-rotates it from EXIF, re-encodes it
// (stripping metadata), saves the original plus a thumbnail under an
// id-scoped directory, and returns the stored paths and dimensions.
func (p *Processor) Process(reader io.Reader, id, filename string) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Apply EXIF orientation, then encode without EXIF. Pure Go encoders
	// drop the metadata, which also strips GPS tags from uploads.
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	original, err := encode(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	path, err := p.save(filepath.Join("originals", id), filename, original)
	if err != nil {
		return nil, fmt.Errorf("saving original: %w", err)
	}

	thumbPath, err := p.createThumbnail(img, id, filename, format)
	if err != nil {
		return nil, fmt.Errorf("creating thumbnail: %w", err)
	}

	return &Result{
		Path:      path,
		ThumbPath: thumbPath,
		MimeType:  formatToMimeType(format),
		Width:     width,
		Height:    height,
		Size:      int64(len(original)),
	}, nil
}

// createThumbnail writes a bounded-fit thumbnail. Images already smaller
// than the thumbnail box are stored as-is.
func (p *Processor) createThumbnail(img image.Image, id, filename, format string) (string, error) {
	bounds := img.Bounds()
	if bounds.Dx() > ThumbWidth || bounds.Dy() > ThumbHeight {
		img = imaging.Fit(img, ThumbWidth, ThumbHeight, imaging.Lanczos)
	}

	data, err := encode(img, format, thumbQuality)
	if err != nil {
		return "", err
	}

	return p.save(filepath.Join("thumbs", id), filename, data)
}

// Delete removes the original and thumbnail directories for an upload id.
func (p *Processor) Delete(id string) error {
	for _, sub := range []string{"originals", "thumbs"} {
		dir := filepath.Join(p.uploadsDir, sub, id)
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", sub, err)
		}
	}
	return nil
}

// IsImage reports whether the MIME type can be processed.
func IsImage(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// DetectMimeType detects the MIME type of raw upload data.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation returns the EXIF orientation tag, or 1 (normal) when
// it cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation normalizes an image per its EXIF orientation value.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		// JPEG output for jpeg and webp sources; WebP encoding is not
		// available in pure Go.
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// save writes image data under uploadsDir/subDir/filename, refusing any
// path that escapes the uploads directory.
func (p *Processor) save(subDir, filename string, data []byte) (string, error) {
	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == ".." || safeFilename == "" {
		return "", fmt.Errorf("invalid filename")
	}

	cleanSubDir := filepath.Clean(subDir)
	if strings.Contains(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid subdirectory path")
	}

	absBase, err := filepath.Abs(p.uploadsDir)
	if err != nil {
		return "", fmt.Errorf("resolving uploads directory: %w", err)
	}

	absTarget := filepath.Join(absBase, cleanSubDir)
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(absTarget, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	filePath := filepath.Join(absTarget, safeFilename)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return filePath, nil
}
