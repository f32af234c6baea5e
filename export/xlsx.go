package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shiftworks/timeclock/timelog"
)

const xlsxSheet = "Time Records"

// XLSX renders the entries in the inclusive date range as a workbook
// with a styled header row and the shared column set.
func XLSX(entries []timelog.Entry, startDate, endDate string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, col := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(xlsxSheet, cell, col); err != nil {
			return nil, fmt.Errorf("set header cell: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header cell: %w", err)
		}
	}

	for rowIdx, e := range FilterRange(entries, startDate, endDate) {
		for colIdx, value := range row(e) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXFilename returns the download filename for a range export.
func XLSXFilename(startDate, endDate string) string {
	return fmt.Sprintf("time-records-%s-to-%s.xlsx", startDate, endDate)
}
