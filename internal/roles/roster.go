// package roles tracks merge authority as a time-varying attribute.
// The roster is an explicit input to any computation that needs role context,
// so join and leave dates are first-class data rather than a hardcoded list.
package roles

import (
	"sort"
	"time"

	"review-metrics/internal/domain"
)

// Roster maps an actor to the intervals during which they held merge authority.
type Roster map[string][]domain.MaintainerInterval

// IsMaintainerAt reports whether the actor held merge authority at t.
func (r Roster) IsMaintainerAt(actorID string, t time.Time) bool {
	for _, iv := range r[actorID] {
		if t.Before(iv.From) {
			continue
		}

		if iv.Until == nil || t.Before(*iv.Until) {
			return true
		}
	}

	return false
}

// Annotate stamps each event's IsMaintainer flag from the roster, evaluated
// at the event's own timestamp. Collectors sometimes record the reviewer's
// current role instead of the role at the time of the event; the roster is
// authoritative when present.
func (r Roster) Annotate(prs []domain.PullRequest) {
	for i := range prs {
		events := prs[i].Events
		for j := range events {
			events[j].IsMaintainer = r.IsMaintainerAt(events[j].ReviewerID, events[j].Timestamp)
		}
	}
}

// ActiveAt returns the sorted IDs of all actors holding merge authority at t.
func (r Roster) ActiveAt(t time.Time) []string {
	var active []string

	for actorID := range r {
		if r.IsMaintainerAt(actorID, t) {
			active = append(active, actorID)
		}
	}

	sort.Strings(active)

	return active
}
