package gotenberg

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

func TestConvertToPDFUploadsMultipart(t *testing.T) {
	var gotPath, gotFilename string
	var gotContent []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		file, header, err := r.FormFile("files")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotContent, _ = io.ReadAll(file)
		w.Write([]byte("%PDF-converted"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	pdf, err := client.ConvertToPDF(context.Background(), []byte("legacy bytes"), "old.doc")
	if err != nil {
		t.Fatalf("ConvertToPDF() error = %v", err)
	}
	if gotPath != "/forms/libreoffice/convert" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotFilename != "old.doc" {
		t.Fatalf("filename = %q", gotFilename)
	}
	if string(gotContent) != "legacy bytes" {
		t.Fatalf("content = %q", gotContent)
	}
	if string(pdf) != "%PDF-converted" {
		t.Fatalf("pdf = %q", pdf)
	}
}

func TestConvertToPDFNonSuccessIsHardFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unsupported format", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ConvertToPDF(context.Background(), []byte("x"), "old.vsd")
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestConvertToPDFEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ConvertToPDF(context.Background(), []byte("x"), "old.doc")
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction for empty body, got %v", err)
	}
}
