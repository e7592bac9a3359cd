package replan

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestArrivalQueue_SeedIgnoresEmptyInput(t *testing.T) {
	q := &arrivalQueue{}

	q.seed(0, date(2024, 3, 1))
	q.seed(-5, date(2024, 3, 1))
	q.seed(100, time.Time{})

	if len(q.pending) != 0 {
		t.Fatalf("expected empty queue, got %d entries", len(q.pending))
	}

	q.seed(100, date(2024, 3, 1))
	if len(q.pending) != 1 {
		t.Fatalf("expected 1 entry after valid seed, got %d", len(q.pending))
	}
}

func TestArrivalQueue_MatureOnRemovesEntries(t *testing.T) {
	q := &arrivalQueue{}
	q.schedule(50, date(2024, 2, 10))
	q.schedule(30, date(2024, 2, 10))
	q.schedule(20, date(2024, 2, 15))

	matured := q.matureOn(date(2024, 2, 10))
	if len(matured) != 2 {
		t.Fatalf("expected 2 matured arrivals, got %d", len(matured))
	}
	if matured[0].Quantity != 50 || matured[1].Quantity != 30 {
		t.Errorf("matured quantities = %v, %v; want 50, 30", matured[0].Quantity, matured[1].Quantity)
	}

	// Entries mature at most once.
	if again := q.matureOn(date(2024, 2, 10)); len(again) != 0 {
		t.Errorf("expected no arrivals on second maturity, got %d", len(again))
	}
	if len(q.pending) != 1 {
		t.Errorf("expected 1 remaining entry, got %d", len(q.pending))
	}
}

func TestArrivalQueue_HasPendingAfter(t *testing.T) {
	q := &arrivalQueue{}
	q.schedule(10, date(2024, 2, 15))

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{name: "before_arrival", date: date(2024, 2, 1), want: true},
		{name: "on_arrival_date", date: date(2024, 2, 15), want: false},
		{name: "after_arrival", date: date(2024, 2, 20), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.hasPendingAfter(tt.date); got != tt.want {
				t.Errorf("hasPendingAfter(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}

	if q.hasPendingAfter(date(2024, 3, 1)) {
		t.Error("expected no pending after all arrivals")
	}
}
