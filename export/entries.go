/*
Package export writes listed entries to an Excel workbook.

LAYOUT:
  One sheet "Entries":
    Name | Date | Amount | Period
  The last column carries the label of the period selector and the name of
  the containing range (empty when no range contains the date). A bold
  header row with an auto filter, then one row per entry, then a total row.

SEE ALSO:
  - entries/entries.go: Listing
  - search/field.go: PeriodField
*/
package export

import (
	"bytes"
	"fmt"

	"github.com/warp/daterange-engine/entries"
	"github.com/warp/daterange-engine/search"
	"github.com/xuri/excelize/v2"
)

// Sheet is the name of the exported sheet.
const Sheet = "Entries"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers returns the column titles of the export.
func Headers() []string {
	return []string{"Name", "Date", "Amount", search.PeriodField.Label}
}

// EntriesWorkbook builds the workbook for a listing.
func EntriesWorkbook(listing entries.Listing) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	headers := Headers()
	for i, h := range headers {
		if err := f.SetCellValue(Sheet, cell(i+1, 1), h); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	row := 2
	for _, e := range listing.Entries {
		values := []interface{}{e.Name, e.Date.String(), e.Amount.InexactFloat64(), e.PeriodName}
		for i, v := range values {
			if err := f.SetCellValue(Sheet, cell(i+1, row), v); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
		row++
	}
	_ = f.SetCellValue(Sheet, cell(1, row), "Total")
	_ = f.SetCellValue(Sheet, cell(3, row), listing.Total.InexactFloat64())

	last, _ := excelize.ColumnNumberToName(len(headers))
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(Sheet, "A1", last+"1", style)
		_ = f.SetCellStyle(Sheet, cell(1, row), cell(len(headers), row), style)
	}
	_ = f.AutoFilter(Sheet, fmt.Sprintf("A1:%s1", last), nil)
	_ = f.SetColWidth(Sheet, "A", "A", 30)
	_ = f.SetColWidth(Sheet, "B", "C", 12)
	_ = f.SetColWidth(Sheet, "D", "D", 20)

	return f, nil
}

// EntriesXLSX renders the workbook to bytes.
func EntriesXLSX(listing entries.Listing) ([]byte, error) {
	f, err := EntriesWorkbook(listing)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
