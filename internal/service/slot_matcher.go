package service

import (
	"sort"

	"clinic-appointment-manager/internal/domain/entity"
)

// SlotMatcher ranks waiting-list entries against a freed slot. It is pure:
// candidates go in, an ordered selection comes out, nothing is mutated or
// persisted. The lifecycle service owns all side effects.
type SlotMatcher struct{}

func NewSlotMatcher() *SlotMatcher {
	return &SlotMatcher{}
}

// Match returns the best eligible entry for the slot, or nil when no entry
// is eligible. Eligibility requires waiting status, matching appointment
// type, and compatibility with the entry's preferred dates and times.
func (m *SlotMatcher) Match(slot entity.AvailableSlot, candidates []entity.WaitingListEntry) *entity.WaitingListEntry {
	ranked := m.Rank(slot, candidates)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

// TopCandidates returns up to n eligible entries in selection order, used by
// the cascade to re-offer a slot down the line after a decline or expiry.
func (m *SlotMatcher) TopCandidates(slot entity.AvailableSlot, candidates []entity.WaitingListEntry, n int) []entity.WaitingListEntry {
	ranked := m.Rank(slot, candidates)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Rank filters ineligible entries and orders the rest by priority (high
// first), then by enrollment time (earliest first). The entry ID breaks
// exact ties so the ordering is deterministic across processes.
func (m *SlotMatcher) Rank(slot entity.AvailableSlot, candidates []entity.WaitingListEntry) []entity.WaitingListEntry {
	eligible := make([]entity.WaitingListEntry, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsWaiting() {
			continue
		}
		if !c.Matches(slot) {
			continue
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	return eligible
}
