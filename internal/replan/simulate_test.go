package replan

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/andresuchdata/reorder/internal/domain"
)

func scenarioInputs() domain.ReplenishmentInputs {
	return domain.ReplenishmentInputs{
		ProductTitle:      "Moisture Serum",
		VariantTitle:      "30ml",
		VariantSKU:        "SER-030",
		DailyDemand:       10,
		LeadTimeDays:      20,
		ShippingTimeDays:  10,
		SafetyStockDays:   5,
		StartingInventory: 1000,
		StartDate:         date(2024, 1, 1),
	}
}

func ordersOf(events []domain.ScheduleEvent) []domain.ScheduleEvent {
	var orders []domain.ScheduleEvent
	for _, ev := range events {
		if ev.Kind == domain.EventOrderPlaced {
			orders = append(orders, ev)
		}
	}
	return orders
}

func TestSimulate_SteadyDemand(t *testing.T) {
	inputs := scenarioInputs()

	events, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	orders := ordersOf(events)
	if len(orders) == 0 {
		t.Fatal("expected at least one placed order")
	}

	// Inventory starts at 1000 and drains 10/day against a reorder point
	// of 350, so the 65th consumption day triggers the first order.
	first := orders[0]
	wantOrderDate := inputs.StartDate.AddDate(0, 0, 64)
	if !first.OrderDate.Equal(wantOrderDate) {
		t.Errorf("first order date = %s, want %s",
			first.OrderDate.Format("2006-01-02"), wantOrderDate.Format("2006-01-02"))
	}
	if want := first.OrderDate.AddDate(0, 0, 30); !first.ArrivalDate.Equal(want) {
		t.Errorf("first arrival date = %s, want %s",
			first.ArrivalDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if first.Quantity != 350 {
		t.Errorf("first order quantity = %v, want 350", first.Quantity)
	}

	// A 35-day order cadence fits nine orders into the horizon.
	if len(orders) != 9 {
		t.Errorf("expected 9 placed orders, got %d", len(orders))
	}

	for _, ev := range events {
		if ev.ProductTitle != inputs.ProductTitle || ev.VariantSKU != inputs.VariantSKU {
			t.Errorf("event missing item identity: %+v", ev)
		}
		if ev.Completed {
			t.Errorf("event emitted with Completed=true: %+v", ev)
		}
	}
}

func TestSimulate_InTransitSeedDelaysFirstOrder(t *testing.T) {
	inputs := scenarioInputs()
	inputs.InTransitQty = 200
	inputs.InTransitArrival = inputs.StartDate.AddDate(0, 0, 10)

	events, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("expected events")
	}
	seed := events[0]
	if seed.Kind != domain.EventInTransitArrival {
		t.Fatalf("first event kind = %s, want %s", seed.Kind, domain.EventInTransitArrival)
	}
	if !seed.ArrivalDate.Equal(inputs.InTransitArrival) {
		t.Errorf("seed arrival date = %s, want %s",
			seed.ArrivalDate.Format("2006-01-02"), inputs.InTransitArrival.Format("2006-01-02"))
	}
	if seed.Quantity != 200 {
		t.Errorf("seed quantity = %v, want 200", seed.Quantity)
	}
	if !seed.OrderDate.IsZero() {
		t.Errorf("seed order date = %s, want empty", seed.OrderDate.Format("2006-01-02"))
	}

	// The 200-unit credit at day 10 pushes the first reorder out from
	// day 64 to day 84.
	orders := ordersOf(events)
	if len(orders) == 0 {
		t.Fatal("expected at least one placed order")
	}
	if want := inputs.StartDate.AddDate(0, 0, 84); !orders[0].OrderDate.Equal(want) {
		t.Errorf("first order date = %s, want %s",
			orders[0].OrderDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestSimulate_ZeroDemandOrdersOnceAtStart(t *testing.T) {
	inputs := domain.ReplenishmentInputs{
		VariantSKU:   "DORMANT-01",
		LeadTimeDays: 365,
		StartDate:    date(2024, 1, 1),
	}

	events, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != domain.EventOrderPlaced {
		t.Errorf("event kind = %s, want %s", ev.Kind, domain.EventOrderPlaced)
	}
	if !ev.OrderDate.Equal(inputs.StartDate) {
		t.Errorf("order date = %s, want start date %s",
			ev.OrderDate.Format("2006-01-02"), inputs.StartDate.Format("2006-01-02"))
	}
}

func TestSimulate_ZeroDemandShortLeadKeepsOrdersSequential(t *testing.T) {
	// With zero demand and a short lead time the policy re-triggers after
	// each zero-quantity arrival; orders may repeat but never overlap.
	inputs := domain.ReplenishmentInputs{
		VariantSKU:   "DORMANT-02",
		LeadTimeDays: 30,
		StartDate:    date(2024, 1, 1),
	}

	events, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	orders := ordersOf(events)
	if len(orders) < 2 {
		t.Fatalf("expected repeated orders, got %d", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].OrderDate.Before(orders[i-1].ArrivalDate) {
			t.Errorf("order %d placed %s while order %d still in flight until %s",
				i, orders[i].OrderDate.Format("2006-01-02"),
				i-1, orders[i-1].ArrivalDate.Format("2006-01-02"))
		}
	}
}

func TestSimulate_AmpleInventoryYieldsEmptySchedule(t *testing.T) {
	inputs := scenarioInputs()
	inputs.StartingInventory = 10000

	events, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty schedule, got %d events", len(events))
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	inputs := scenarioInputs()
	inputs.InTransitQty = 200
	inputs.InTransitArrival = inputs.StartDate.AddDate(0, 0, 10)

	first, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	second, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs with identical inputs produced different schedules")
	}
}

func TestSimulate_SingleOutstandingOrderInvariant(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ReplenishmentInputs)
	}{
		{name: "steady_demand", mutate: func(in *domain.ReplenishmentInputs) {}},
		{name: "short_lead_time", mutate: func(in *domain.ReplenishmentInputs) {
			in.LeadTimeDays = 2
			in.ShippingTimeDays = 1
		}},
		{name: "low_starting_inventory", mutate: func(in *domain.ReplenishmentInputs) {
			in.StartingInventory = 50
		}},
		{name: "fractional_demand", mutate: func(in *domain.ReplenishmentInputs) {
			in.DailyDemand = 3.7
			in.StartingInventory = 120
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := scenarioInputs()
			tt.mutate(&inputs)

			events, err := Simulate(inputs)
			if err != nil {
				t.Fatalf("Simulate failed: %v", err)
			}

			orders := ordersOf(events)
			for i := 1; i < len(orders); i++ {
				if orders[i].OrderDate.Before(orders[i-1].ArrivalDate) {
					t.Errorf("overlapping orders: %s placed before %s arrival",
						orders[i].OrderDate.Format("2006-01-02"),
						orders[i-1].ArrivalDate.Format("2006-01-02"))
				}
			}

			// Output is non-decreasing in arrival date.
			for i := 1; i < len(events); i++ {
				if events[i].ArrivalDate.Before(events[i-1].ArrivalDate) {
					t.Errorf("events out of order at index %d", i)
				}
			}

			// Orders are placed within the horizon and arrive exactly one
			// lead time later.
			endDate := inputs.StartDate.AddDate(0, 0, 365)
			totalLead := inputs.LeadTimeDays + inputs.ShippingTimeDays
			for _, o := range orders {
				if o.OrderDate.Before(inputs.StartDate) || !o.OrderDate.Before(endDate) {
					t.Errorf("order date %s outside horizon", o.OrderDate.Format("2006-01-02"))
				}
				if want := o.OrderDate.AddDate(0, 0, totalLead); !o.ArrivalDate.Equal(want) {
					t.Errorf("arrival %s != order %s + %d days",
						o.ArrivalDate.Format("2006-01-02"), o.OrderDate.Format("2006-01-02"), totalLead)
				}
			}
		})
	}
}

func TestSimulate_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ReplenishmentInputs)
	}{
		{name: "negative_demand", mutate: func(in *domain.ReplenishmentInputs) {
			in.DailyDemand = -1
		}},
		{name: "negative_lead_time", mutate: func(in *domain.ReplenishmentInputs) {
			in.LeadTimeDays = -1
		}},
		{name: "negative_shipping_time", mutate: func(in *domain.ReplenishmentInputs) {
			in.ShippingTimeDays = -1
		}},
		{name: "negative_safety_stock_days", mutate: func(in *domain.ReplenishmentInputs) {
			in.SafetyStockDays = -1
		}},
		{name: "negative_in_transit_quantity", mutate: func(in *domain.ReplenishmentInputs) {
			in.InTransitQty = -10
			in.InTransitArrival = in.StartDate.AddDate(0, 0, 5)
		}},
		{name: "in_transit_without_arrival_date", mutate: func(in *domain.ReplenishmentInputs) {
			in.InTransitQty = 200
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := scenarioInputs()
			tt.mutate(&inputs)

			events, err := Simulate(inputs)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			if events != nil {
				t.Errorf("expected no partial schedule, got %d events", len(events))
			}
		})
	}
}

func TestSimulate_NormalizesTimestampsToDays(t *testing.T) {
	inputs := scenarioInputs()
	inputs.StartDate = time.Date(2024, 1, 1, 17, 42, 3, 0, time.UTC)

	events, err := Simulate(inputs)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	orders := ordersOf(events)
	if len(orders) == 0 {
		t.Fatal("expected orders")
	}
	if want := date(2024, 1, 1).AddDate(0, 0, 64); !orders[0].OrderDate.Equal(want) {
		t.Errorf("first order date = %s, want %s",
			orders[0].OrderDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}
