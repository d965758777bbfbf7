// Package plan inspects uploaded plan files at ingestion time.
//
// The core never parses file bytes during measurement — rendering happens
// client-side. This service only establishes, once at upload, that a file is
// a plan we can serve back: a valid PDF (page count via the ledongthuc/pdf
// reader, pure Go, no CGO) or a decodable raster image (dimensions via the
// stdlib decode-config path, which reads headers without decoding pixels).
package plan

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Register the raster formats plan images arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ledongthuc/pdf"

	"github.com/Babaeti777/takeoff-api/internal/models"
)

// Info is what ingestion learns about an uploaded plan file.
type Info struct {
	Type        models.DrawingType
	ContentType string
	Width       int // image pixel dimensions; zero for PDFs
	Height      int
	PageCount   int // PDF page count; zero for images
}

// imageContentTypes maps the accepted raster extensions to MIME types for
// serving the stored bytes back.
var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Inspect validates an uploaded plan file and extracts its intrinsic
// metadata. The error message is user-facing — it becomes the per-file
// warning in a batch upload response.
func Inspect(filename string, data []byte) (*Info, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == ".pdf" {
		return inspectPDF(data)
	}
	if ct, ok := imageContentTypes[ext]; ok {
		return inspectImage(data, ct)
	}
	return nil, fmt.Errorf("unsupported file format %q; accepted: .pdf, .png, .jpg, .jpeg, .gif", ext)
}

// inspectPDF checks the magic bytes and counts pages.
func inspectPDF(data []byte) (*Info, error) {
	if !ValidatePDF(data) {
		return nil, fmt.Errorf("file does not appear to be a valid PDF")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := reader.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("PDF contains no pages")
	}

	return &Info{
		Type:        models.DrawingPDF,
		ContentType: "application/pdf",
		PageCount:   pages,
	}, nil
}

// inspectImage reads the image header for its pixel dimensions.
func inspectImage(data []byte, contentType string) (*Info, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Info{
		Type:        models.DrawingImage,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
