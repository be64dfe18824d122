package extractor

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", "name")
	f.SetCellValue("Sheet1", "B1", "rate")
	f.SetCellValue("Sheet1", "A2", "alice")
	f.SetCellValue("Sheet1", "B2", 42)

	if _, err := f.NewSheet("Totals"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	f.SetCellValue("Totals", "A1", "sum")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestExtractSpreadsheetText(t *testing.T) {
	text, err := extractSpreadsheetText(buildWorkbook(t))
	if err != nil {
		t.Fatalf("extractSpreadsheetText() error = %v", err)
	}

	if !strings.Contains(text, `--- Sheet: "Sheet1" ---`) {
		t.Fatalf("missing sheet header: %q", text)
	}
	if !strings.Contains(text, "name\trate") || !strings.Contains(text, "alice\t42") {
		t.Fatalf("rows not tab-joined: %q", text)
	}
	if !strings.Contains(text, `--- Sheet: "Totals" ---`) {
		t.Fatalf("second sheet missing: %q", text)
	}
}

func TestExtractSpreadsheetInvalidBytes(t *testing.T) {
	_, err := extractSpreadsheetText([]byte("not a workbook"))
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
