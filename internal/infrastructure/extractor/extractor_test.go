package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

type ocrFake struct {
	text      string
	err       error
	calls     int
	mimeTypes []string
}

func (f *ocrFake) Recognize(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.calls++
	f.mimeTypes = append(f.mimeTypes, mimeType)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type converterFake struct {
	pdf   []byte
	err   error
	calls int
}

func (f *converterFake) ConvertToPDF(_ context.Context, _ []byte, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

func writeUpload(t *testing.T, name string, data []byte) domain.FileUpload {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	return domain.FileUpload{Path: path, OriginalName: name}
}

func TestExtractPlainText(t *testing.T) {
	d := NewDispatcher(&ocrFake{}, &converterFake{}, nil)
	file := writeUpload(t, "notes.txt", []byte("hello world"))

	text, err := d.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello world" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	d := NewDispatcher(&ocrFake{}, &converterFake{}, nil)
	file := writeUpload(t, "archive.zip", []byte("x"))
	file.DeclaredMIMEType = "application/zip"

	_, err := d.Extract(context.Background(), file)
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractImageFallsBackToDeclaredMIME(t *testing.T) {
	ocr := &ocrFake{text: "recognized"}
	d := NewDispatcher(ocr, &converterFake{}, nil)
	file := writeUpload(t, "scan", []byte{0xff, 0xd8})
	file.DeclaredMIMEType = "image/jpeg"

	text, err := d.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "recognized" {
		t.Fatalf("text = %q", text)
	}
	if ocr.calls != 1 || ocr.mimeTypes[0] != "image/jpeg" {
		t.Fatalf("ocr calls = %d, mime = %v", ocr.calls, ocr.mimeTypes)
	}
}

func TestExtractPDFPrimarySucceedsWithoutOCR(t *testing.T) {
	ocr := &ocrFake{text: "ocr text"}
	d := NewDispatcher(ocr, &converterFake{}, nil)
	d.parsePDF = func([]byte) (string, error) { return "parsed text", nil }

	file := writeUpload(t, "report.pdf", []byte("%PDF-"))
	text, err := d.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "parsed text" {
		t.Fatalf("text = %q", text)
	}
	if ocr.calls != 0 {
		t.Fatal("OCR must not run when the primary parser yields text")
	}
}

func TestExtractPDFFallsBackToOCRExactlyOnce(t *testing.T) {
	ocr := &ocrFake{text: "ocr text"}
	d := NewDispatcher(ocr, &converterFake{}, nil)
	primaryCalls := 0
	d.parsePDF = func([]byte) (string, error) {
		primaryCalls++
		return "", errors.New("garbled xref")
	}

	file := writeUpload(t, "scan.pdf", []byte("%PDF-"))
	text, err := d.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "ocr text" {
		t.Fatalf("text = %q", text)
	}
	if primaryCalls != 1 {
		t.Fatalf("primary parser ran %d times, want 1", primaryCalls)
	}
	if ocr.calls != 1 || ocr.mimeTypes[0] != "application/pdf" {
		t.Fatalf("ocr calls = %d, mime = %v", ocr.calls, ocr.mimeTypes)
	}
}

func TestExtractPDFEmptyPrimaryTriggersOCR(t *testing.T) {
	ocr := &ocrFake{text: "ocr text"}
	d := NewDispatcher(ocr, &converterFake{}, nil)
	d.parsePDF = func([]byte) (string, error) { return "  \n", nil }

	file := writeUpload(t, "blank.pdf", []byte("%PDF-"))
	text, err := d.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "ocr text" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractPDFBothStagesFail(t *testing.T) {
	ocr := &ocrFake{err: errors.New("ocr down")}
	d := NewDispatcher(ocr, &converterFake{}, nil)
	d.parsePDF = func([]byte) (string, error) { return "", errors.New("garbled") }

	file := writeUpload(t, "broken.pdf", []byte("%PDF-"))
	_, err := d.Extract(context.Background(), file)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractLegacyOfficeViaConversion(t *testing.T) {
	converter := &converterFake{pdf: []byte("%PDF-converted")}
	d := NewDispatcher(&ocrFake{}, converter, nil)
	d.parsePDF = func(data []byte) (string, error) {
		if string(data) != "%PDF-converted" {
			return "", errors.New("unexpected bytes")
		}
		return "legacy content", nil
	}

	file := writeUpload(t, "old.doc", []byte("legacy"))
	text, err := d.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "legacy content" {
		t.Fatalf("text = %q", text)
	}
	if converter.calls != 1 {
		t.Fatalf("converter calls = %d", converter.calls)
	}
}

func TestExtractLegacyOfficeConversionFailureIsHard(t *testing.T) {
	converter := &converterFake{err: errors.New("service down")}
	d := NewDispatcher(&ocrFake{text: "never"}, converter, nil)

	file := writeUpload(t, "old.ppt", []byte("legacy"))
	_, err := d.Extract(context.Background(), file)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractMissingConverter(t *testing.T) {
	d := NewDispatcher(&ocrFake{}, nil, nil)
	file := writeUpload(t, "old.xls", []byte("legacy"))

	_, err := d.Extract(context.Background(), file)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractEmptyResultIsError(t *testing.T) {
	d := NewDispatcher(&ocrFake{}, &converterFake{}, nil)
	file := writeUpload(t, "empty.txt", []byte("   \n"))

	_, err := d.Extract(context.Background(), file)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction for empty text, got %v", err)
	}
}
