package replan

import (
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/reorder/internal/domain"
)

// horizonDays is the fixed planning window of one simulation run.
const horizonDays = 365

// Simulate computes the purchase-order schedule for a single item under a
// continuous-review policy. It steps a day-indexed clock across the
// horizon, matures pending arrivals, consumes demand, and places an order
// whenever inventory sits at or below the reorder point with nothing in
// flight.
//
// The run is deterministic: identical inputs always yield identical
// schedules. Events come back sorted by arrival date (stable; ties keep
// emission order) with Completed initialized to false. An empty schedule
// means no action is needed within the horizon, not an error.
func Simulate(inputs domain.ReplenishmentInputs) ([]domain.ScheduleEvent, error) {
	params, err := ComputeParameters(inputs.DailyDemand, inputs.LeadTimeDays, inputs.ShippingTimeDays, inputs.SafetyStockDays)
	if err != nil {
		return nil, err
	}
	if inputs.InTransitQty < 0 {
		return nil, fmt.Errorf("%w: in-transit quantity %v is negative", ErrInvalidParameter, inputs.InTransitQty)
	}
	if inputs.InTransitQty > 0 && inputs.InTransitArrival.IsZero() {
		return nil, fmt.Errorf("%w: in-transit quantity %v has no arrival date", ErrInvalidParameter, inputs.InTransitQty)
	}

	queue := &arrivalQueue{}
	if !inputs.InTransitArrival.IsZero() {
		queue.seed(inputs.InTransitQty, day(inputs.InTransitArrival))
	}

	var events []domain.ScheduleEvent

	inventory := inputs.StartingInventory
	date := day(inputs.StartDate)
	endDate := date.AddDate(0, 0, horizonDays)

	for date.Before(endDate) {
		// Arrivals mature before the demand debit and the reorder check
		// on the same day. This ordering is load-bearing: a same-day
		// maturity frees the single-outstanding-order slot.
		for _, arrival := range queue.matureOn(date) {
			inventory += arrival.Quantity
			events = append(events, domain.ScheduleEvent{
				Kind:        domain.EventInTransitArrival,
				ArrivalDate: arrival.ArrivalDate,
				Quantity:    arrival.Quantity,
			})
		}

		inventory -= inputs.DailyDemand

		if inventory <= params.ReorderPoint && !queue.hasPendingAfter(date) {
			arrivalDate := date.AddDate(0, 0, params.TotalLeadTime)
			events = append(events, domain.ScheduleEvent{
				Kind:        domain.EventOrderPlaced,
				OrderDate:   date,
				ArrivalDate: arrivalDate,
				Quantity:    params.OrderQuantity,
			})
			// Inventory is credited at maturity, never at placement.
			queue.schedule(params.OrderQuantity, arrivalDate)
		}

		date = date.AddDate(0, 0, 1)
	}

	return assemble(inputs, events), nil
}

// assemble attaches item identity to emitted events and returns them
// sorted by arrival date.
func assemble(inputs domain.ReplenishmentInputs, events []domain.ScheduleEvent) []domain.ScheduleEvent {
	schedule := make([]domain.ScheduleEvent, len(events))
	for i, ev := range events {
		ev.ProductTitle = inputs.ProductTitle
		ev.VariantTitle = inputs.VariantTitle
		ev.VariantSKU = inputs.VariantSKU
		ev.Completed = false
		schedule[i] = ev
	}
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].ArrivalDate.Before(schedule[j].ArrivalDate)
	})
	return schedule
}

// day truncates a timestamp to midnight UTC so the clock steps in whole
// calendar days.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
