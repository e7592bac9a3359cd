// internal/export/csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/andresuchdata/reorder/internal/domain"
)

const dateLayout = "2006-01-02"

// header is the flat-record form of a schedule row. Order Date stays
// empty for in-transit arrivals.
var header = []string{"Product", "Variant", "SKU", "Order Date", "Arrival Date", "Order Quantity", "Event", "Completed"}

// WriteSchedule writes a schedule as a comma-separated, UTF-8 flat-record
// file with a header row.
func WriteSchedule(w io.Writer, events []domain.ScheduleEvent) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ev := range events {
		orderDate := ""
		if !ev.OrderDate.IsZero() {
			orderDate = ev.OrderDate.Format(dateLayout)
		}
		record := []string{
			ev.ProductTitle,
			ev.VariantTitle,
			ev.VariantSKU,
			orderDate,
			ev.ArrivalDate.Format(dateLayout),
			strconv.FormatFloat(ev.Quantity, 'f', -1, 64),
			string(ev.Kind),
			strconv.FormatBool(ev.Completed),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WriteScheduleFile writes a schedule to a file path, creating it.
func WriteScheduleFile(path string, events []domain.ScheduleEvent) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteSchedule(file, events)
}

// ReadSchedule parses a flat-record schedule file back into events. It is
// the inverse of WriteSchedule: a write-read cycle reproduces identical
// event tuples, completion flags included.
func ReadSchedule(r io.Reader) ([]domain.ScheduleEvent, error) {
	reader := csv.NewReader(r)

	head, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule header: %w", err)
	}
	if len(head) != len(header) {
		return nil, fmt.Errorf("unexpected schedule header: %v", head)
	}

	var events []domain.ScheduleEvent
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule record: %w", err)
		}

		ev, err := parseEvent(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(events)+2, err)
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseEvent(record []string) (domain.ScheduleEvent, error) {
	var ev domain.ScheduleEvent

	ev.ProductTitle = record[0]
	ev.VariantTitle = record[1]
	ev.VariantSKU = record[2]

	if record[3] != "" {
		orderDate, err := time.Parse(dateLayout, record[3])
		if err != nil {
			return ev, fmt.Errorf("invalid order date %q: %w", record[3], err)
		}
		ev.OrderDate = orderDate
	}

	arrivalDate, err := time.Parse(dateLayout, record[4])
	if err != nil {
		return ev, fmt.Errorf("invalid arrival date %q: %w", record[4], err)
	}
	ev.ArrivalDate = arrivalDate

	qty, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return ev, fmt.Errorf("invalid order quantity %q: %w", record[5], err)
	}
	ev.Quantity = qty

	switch domain.EventKind(record[6]) {
	case domain.EventInTransitArrival, domain.EventOrderPlaced:
		ev.Kind = domain.EventKind(record[6])
	default:
		return ev, fmt.Errorf("unknown event kind %q", record[6])
	}

	completed, err := strconv.ParseBool(record[7])
	if err != nil {
		return ev, fmt.Errorf("invalid completed flag %q: %w", record[7], err)
	}
	ev.Completed = completed

	return ev, nil
}
