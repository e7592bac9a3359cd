package replan

import "time"

// PendingArrival is a quantity ordered but not yet available to satisfy
// demand.
type PendingArrival struct {
	ArrivalDate time.Time
	Quantity    float64
}

// arrivalQueue tracks pending inventory increments keyed by arrival date.
// Each queue belongs to exactly one simulation run.
type arrivalQueue struct {
	pending []PendingArrival
}

// seed inserts the initial in-transit arrival. It is a no-op when the
// quantity is not positive or the arrival date is unset.
func (q *arrivalQueue) seed(quantity float64, arrivalDate time.Time) {
	if quantity <= 0 || arrivalDate.IsZero() {
		return
	}
	q.schedule(quantity, arrivalDate)
}

// schedule inserts a pending arrival resulting from a placed order.
func (q *arrivalQueue) schedule(quantity float64, arrivalDate time.Time) {
	q.pending = append(q.pending, PendingArrival{ArrivalDate: arrivalDate, Quantity: quantity})
}

// matureOn removes and returns every entry arriving exactly on the given
// date. Removal prevents an arrival from being credited twice.
func (q *arrivalQueue) matureOn(date time.Time) []PendingArrival {
	var matured []PendingArrival
	remaining := q.pending[:0]
	for _, p := range q.pending {
		if p.ArrivalDate.Equal(date) {
			matured = append(matured, p)
			continue
		}
		remaining = append(remaining, p)
	}
	q.pending = remaining
	return matured
}

// hasPendingAfter reports whether any entry arrives strictly after the
// given date. The stepper uses it to keep at most one order in flight.
func (q *arrivalQueue) hasPendingAfter(date time.Time) bool {
	for _, p := range q.pending {
		if p.ArrivalDate.After(date) {
			return true
		}
	}
	return false
}
