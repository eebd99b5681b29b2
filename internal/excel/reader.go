// Package excel handles the spreadsheet formats the service speaks: the
// uploaded OEM code list and the generated price comparison workbook.
package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// codeColumn is the required header naming the OEM code column in uploads
const codeColumn = "OEM_CODE"

// ReadCodes extracts OEM codes from an uploaded workbook. The first sheet
// must carry an OEM_CODE column; blank cells are skipped. Order is
// preserved and duplicates are kept, callers dedupe.
func ReadCodes(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	codeCol := -1
	for i, header := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(header), codeColumn) {
			codeCol = i
			break
		}
	}
	if codeCol < 0 {
		return nil, fmt.Errorf("missing required column %q", codeColumn)
	}

	var codes []string
	for _, row := range rows[1:] {
		if codeCol >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeCol])
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}

	return codes, nil
}
