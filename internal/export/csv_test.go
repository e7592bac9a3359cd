package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/reorder/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSchedule() []domain.ScheduleEvent {
	return []domain.ScheduleEvent{
		{
			ProductTitle: "Moisture Serum",
			VariantTitle: "30ml",
			VariantSKU:   "SER-030",
			Kind:         domain.EventInTransitArrival,
			ArrivalDate:  date(2024, 1, 11),
			Quantity:     200,
		},
		{
			ProductTitle: "Moisture Serum",
			VariantTitle: "30ml",
			VariantSKU:   "SER-030",
			Kind:         domain.EventOrderPlaced,
			OrderDate:    date(2024, 3, 25),
			ArrivalDate:  date(2024, 4, 24),
			Quantity:     350,
			Completed:    true,
		},
	}
}

func TestWriteSchedule_FlatRecordForm(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSchedule(&buf, sampleSchedule()); err != nil {
		t.Fatalf("WriteSchedule failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Product,Variant,SKU,Order Date,Arrival Date,Order Quantity,Event,Completed" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	// In-transit arrivals carry an empty order date.
	if lines[1] != "Moisture Serum,30ml,SER-030,,2024-01-11,200,InTransitArrival,false" {
		t.Errorf("unexpected in-transit row: %s", lines[1])
	}
	if lines[2] != "Moisture Serum,30ml,SER-030,2024-03-25,2024-04-24,350,OrderPlaced,true" {
		t.Errorf("unexpected order row: %s", lines[2])
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	schedule := sampleSchedule()

	var buf bytes.Buffer
	if err := WriteSchedule(&buf, schedule); err != nil {
		t.Fatalf("WriteSchedule failed: %v", err)
	}

	parsed, err := ReadSchedule(&buf)
	if err != nil {
		t.Fatalf("ReadSchedule failed: %v", err)
	}

	if !reflect.DeepEqual(parsed, schedule) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, schedule)
	}
}

func TestReadSchedule_RejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "bad_header",
			csv:  "Product,SKU\nA,B",
		},
		{
			name: "unknown_event_kind",
			csv: "Product,Variant,SKU,Order Date,Arrival Date,Order Quantity,Event,Completed\n" +
				"A,B,SKU-1,2024-01-01,2024-01-31,10,Restock,false",
		},
		{
			name: "bad_arrival_date",
			csv: "Product,Variant,SKU,Order Date,Arrival Date,Order Quantity,Event,Completed\n" +
				"A,B,SKU-1,2024-01-01,soon,10,OrderPlaced,false",
		},
		{
			name: "bad_completed_flag",
			csv: "Product,Variant,SKU,Order Date,Arrival Date,Order Quantity,Event,Completed\n" +
				"A,B,SKU-1,2024-01-01,2024-01-31,10,OrderPlaced,done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSchedule(strings.NewReader(tt.csv)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
