package replan

import "github.com/andresuchdata/reorder/internal/domain"

// CompletionOverlay is a mutable completed-flag map layered over immutable
// schedules. Keys survive schedule regeneration, so toggling one event
// never corrupts flags of unrelated events.
//
// The overlay is a collaborator concern; the simulation itself is
// indifferent to completion state.
type CompletionOverlay struct {
	done map[domain.CompletionKey]bool
}

func NewCompletionOverlay() *CompletionOverlay {
	return &CompletionOverlay{done: make(map[domain.CompletionKey]bool)}
}

// Set records the completed flag for one event key.
func (o *CompletionOverlay) Set(key domain.CompletionKey, completed bool) {
	o.done[key] = completed
}

// Get reports the completed flag for one event key.
func (o *CompletionOverlay) Get(key domain.CompletionKey) bool {
	return o.done[key]
}

// Apply returns a copy of the schedule with overlay flags written onto
// it. Events with no recorded flag keep Completed=false. The result is
// never nil: an empty schedule stays an empty sequence.
func (o *CompletionOverlay) Apply(schedule []domain.ScheduleEvent) []domain.ScheduleEvent {
	out := make([]domain.ScheduleEvent, len(schedule))
	copy(out, schedule)
	for i := range out {
		if completed, ok := o.done[out[i].Key()]; ok {
			out[i].Completed = completed
		}
	}
	return out
}

// Snapshot returns a copy of the recorded flags.
func (o *CompletionOverlay) Snapshot() map[domain.CompletionKey]bool {
	out := make(map[domain.CompletionKey]bool, len(o.done))
	for k, v := range o.done {
		out[k] = v
	}
	return out
}
