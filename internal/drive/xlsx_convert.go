package drive

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// convertXLSXToCSV writes the first sheet of an xlsx workbook out as CSV.
// Demand reports exported from the storefront come down as single-sheet
// workbooks, so only the first sheet matters.
func convertXLSXToCSV(xlsxPath, csvPath string) error {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("unable to open xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("unable to read sheet %s: %w", sheets[0], err)
	}

	out, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("unable to create csv file: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("unable to write csv row: %w", err)
		}
	}
	w.Flush()

	return w.Error()
}
