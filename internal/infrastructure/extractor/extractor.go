// Package extractor turns uploaded files into plain text. Dispatch keys off
// the filename extension; the client-declared MIME type is unreliable and
// only used as a secondary hint for image detection and OCR payloads.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

type formatFamily int

const (
	familyUnknown formatFamily = iota
	familyWordProcessor
	familySpreadsheet
	familyPDF
	familyLegacyOffice
	familyImage
	familyPlainText
)

var familyByExtension = map[string]formatFamily{
	".docx": familyWordProcessor,
	".xlsx": familySpreadsheet,
	".pdf":  familyPDF,
	".pptx": familyLegacyOffice,
	".ppt":  familyLegacyOffice,
	".doc":  familyLegacyOffice,
	".xls":  familyLegacyOffice,
	".vsd":  familyLegacyOffice,
	".vsdx": familyLegacyOffice,
	".jpg":  familyImage,
	".jpeg": familyImage,
	".png":  familyImage,
	".webp": familyImage,
	".txt":  familyPlainText,
}

// Dispatcher is the TextExtractor implementation. PDF extraction is
// primary-then-OCR in a strict, non-configurable order: the OCR fallback is
// costlier and slower and must never run first.
type Dispatcher struct {
	ocr       ports.OCRService
	converter ports.DocumentConverter
	logger    *slog.Logger

	// parsePDF is the primary local PDF parser, injectable in tests.
	parsePDF func(data []byte) (string, error)
}

func NewDispatcher(ocr ports.OCRService, converter ports.DocumentConverter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		ocr:       ocr,
		converter: converter,
		logger:    logger,
		parsePDF:  extractPDFText,
	}
}

func (d *Dispatcher) Extract(ctx context.Context, file domain.FileUpload) (string, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read upload", err)
	}

	text, err := d.extract(ctx, file, data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract text",
			fmt.Errorf("no strategy yielded text for %s", file.OriginalName))
	}
	return text, nil
}

func (d *Dispatcher) extract(ctx context.Context, file domain.FileUpload, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.OriginalName))
	family := familyByExtension[ext]
	if family == familyUnknown && strings.HasPrefix(file.DeclaredMIMEType, "image/") {
		family = familyImage
	}
	if family == familyUnknown && file.DeclaredMIMEType == "text/plain" {
		family = familyPlainText
	}

	switch family {
	case familyWordProcessor:
		return extractDocxText(data)
	case familySpreadsheet:
		return extractSpreadsheetText(data)
	case familyPDF:
		return d.extractPDF(ctx, data)
	case familyLegacyOffice:
		return d.extractViaConversion(ctx, file, data)
	case familyImage:
		return d.recognize(ctx, data, imageMIMEType(ext, file.DeclaredMIMEType))
	case familyPlainText:
		return extractPlainText(data)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("extension %q (declared type %q)", ext, file.DeclaredMIMEType))
	}
}

// extractPDF runs the primary parser and falls back to OCR only when the
// parser errors or yields no text. The primary parser is never retried
// after the fallback.
func (d *Dispatcher) extractPDF(ctx context.Context, data []byte) (string, error) {
	text, err := d.parsePDF(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		d.logger.Warn("pdf_primary_parser_failed", "error", err)
	}
	return d.recognize(ctx, data, "application/pdf")
}

// extractViaConversion delegates legacy office formats to the conversion
// service and re-runs the PDF pipeline on the returned bytes. A transport
// failure or non-success response is a hard failure for this file.
func (d *Dispatcher) extractViaConversion(ctx context.Context, file domain.FileUpload, data []byte) (string, error) {
	if d.converter == nil {
		return "", domain.WrapError(domain.ErrExtraction, "convert document",
			fmt.Errorf("%s requires the conversion service, which is not configured", file.OriginalName))
	}
	pdfBytes, err := d.converter.ConvertToPDF(ctx, data, file.OriginalName)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "convert document", err)
	}
	return d.extractPDF(ctx, pdfBytes)
}

func (d *Dispatcher) recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	if d.ocr == nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr", fmt.Errorf("ocr service not configured"))
	}
	text, err := d.ocr.Recognize(ctx, data, mimeType)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr", err)
	}
	return text, nil
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.WrapError(domain.ErrExtraction, "read plain text", fmt.Errorf("file is not valid UTF-8"))
	}
	return string(data), nil
}

func imageMIMEType(ext, declared string) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
