package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/akashstwt/scraper-backend/internal/models"
)

const (
	resultsSheet = "Price Comparison"
	summarySheet = "Summary"
)

var resultHeaders = []string{"OEM Code", "Source", "Title", "Price", "Availability", "URL"}

// WriteResults renders the merged result rows into a workbook: a Price
// Comparison sheet with one row per (code, source) pair in merge order, and
// a Summary sheet with per-source hit counts. Returns the serialized .xlsx
// bytes ready for attachment.
func WriteResults(results []models.ResultRecord, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", resultsSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range resultHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(resultsSheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(resultsSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, record := range results {
		row := i + 2
		values := []interface{}{
			record.Code,
			string(record.Source),
			record.Title,
			record.Price,
			string(record.Availability),
			record.URL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(resultsSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	widths := []float64{18, 14, 50, 12, 14, 60}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(resultsSheet, col, col, width); err != nil {
			return nil, err
		}
	}

	if err := writeSummary(f, results, headerStyle, generatedAt); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSummary adds the Summary sheet: total codes processed and how many
// lookups per source produced an actual product.
func writeSummary(f *excelize.File, results []models.ResultRecord, headerStyle int, generatedAt time.Time) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	codes := make(map[string]struct{})
	found := make(map[models.Source]int)
	for _, record := range results {
		codes[record.Code] = struct{}{}
		if record.Title != models.TitleNotFound && record.Title != models.TitleError {
			found[record.Source]++
		}
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total OEM Codes", len(codes)},
		{fmt.Sprintf("%s Results Found", models.SourceHotToner), found[models.SourceHotToner]},
		{fmt.Sprintf("%s Results Found", models.SourceInkStation), found[models.SourceInkStation]},
		{"Generated", generatedAt.Format("2006-01-02 15:04:05")},
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 28)
}
