// Package extract is stage 1 of the pipeline: file -> text. Digital PDFs go
// through pdftotext; scanned PDFs and images fall back to tesseract OCR;
// plain-text files are read directly.
package extract

import (
	"context"
	"time"
)

// TextExtractor is the stage-1 contract: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | "TXT"
	Method     string // "plain-text" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32 // 0..1
}
