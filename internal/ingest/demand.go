package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/reorder/internal/domain"
)

// requiredColumns are the demand-report columns a file must carry before
// any simulation runs. Missing columns reject the whole file.
var requiredColumns = []string{
	"product_title",
	"variant_title",
	"variant_sku",
	"ending_quantity",
	"quantity_sold_per_day",
}

// ReadDemandReport parses a demand CSV into items. The header is matched
// by name, so extra columns and arbitrary column order are fine.
func ReadDemandReport(r io.Reader) ([]domain.Item, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var items []domain.Item
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		item, err := parseItem(record, colMap)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(items)+2, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func parseItem(record []string, colMap map[string]int) (domain.Item, error) {
	getValue := func(colName string) string {
		if idx, ok := colMap[colName]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	sku := getValue("variant_sku")
	if sku == "" {
		return domain.Item{}, fmt.Errorf("record has no variant_sku")
	}

	endingQty, err := parseFloat(getValue("ending_quantity"))
	if err != nil {
		return domain.Item{}, fmt.Errorf("sku %s: invalid ending_quantity: %w", sku, err)
	}
	soldPerDay, err := parseFloat(getValue("quantity_sold_per_day"))
	if err != nil {
		return domain.Item{}, fmt.Errorf("sku %s: invalid quantity_sold_per_day: %w", sku, err)
	}

	return domain.Item{
		ProductTitle:  getValue("product_title"),
		VariantTitle:  getValue("variant_title"),
		VariantSKU:    sku,
		EndingQty:     endingQty,
		QtySoldPerDay: soldPerDay,
	}, nil
}

func parseFloat(val string) (float64, error) {
	if val == "" {
		return 0, nil
	}
	return strconv.ParseFloat(val, 64)
}
