package ingest

import (
	"strings"
	"testing"
)

func TestReadDemandReport(t *testing.T) {
	csv := strings.Join([]string{
		"product_title,variant_title,variant_sku,ending_quantity,quantity_sold_per_day,irrelevant",
		"Moisture Serum,30ml,SER-030,1000,10,x",
		"Moisture Serum,50ml,SER-050,320.5,4.25,y",
	}, "\n")

	items, err := ReadDemandReport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadDemandReport failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VariantSKU != "SER-030" || items[0].EndingQty != 1000 || items[0].QtySoldPerDay != 10 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].EndingQty != 320.5 || items[1].QtySoldPerDay != 4.25 {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestReadDemandReport_ColumnOrderIrrelevant(t *testing.T) {
	csv := strings.Join([]string{
		"quantity_sold_per_day,variant_sku,ending_quantity,product_title,variant_title",
		"10,SER-030,1000,Moisture Serum,30ml",
	}, "\n")

	items, err := ReadDemandReport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadDemandReport failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductTitle != "Moisture Serum" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestReadDemandReport_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "missing_required_column",
			csv:  "product_title,variant_title,variant_sku,ending_quantity\nA,B,SKU-1,10",
		},
		{
			name: "missing_sku_value",
			csv:  "product_title,variant_title,variant_sku,ending_quantity,quantity_sold_per_day\nA,B,,10,1",
		},
		{
			name: "bad_numeric_value",
			csv:  "product_title,variant_title,variant_sku,ending_quantity,quantity_sold_per_day\nA,B,SKU-1,ten,1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadDemandReport(strings.NewReader(tt.csv)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
