package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// extractSpreadsheetText converts every sheet to tab-separated text and
// concatenates them with a per-sheet header for traceability.
func extractSpreadsheetText(data []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open spreadsheet", err)
	}
	defer workbook.Close()

	var sheets []string
	for _, name := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(name)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, fmt.Sprintf("read sheet %q", name), err)
		}

		lines := make([]string, 0, len(rows))
		for _, cells := range rows {
			line := strings.TrimRight(strings.Join(cells, "\t"), "\t")
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		sheets = append(sheets, fmt.Sprintf("--- Sheet: %q ---\n%s", name, strings.Join(lines, "\n")))
	}
	return strings.Join(sheets, "\n\n"), nil
}
