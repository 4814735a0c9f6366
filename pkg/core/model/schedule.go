package model

import "sort"

// ScheduleTable maps calendar date -> schedule slot -> ordered volunteer ids.
//
// A volunteer id appears at most once per (date, slot). Slots with no volunteers and
// dates with no slots are never kept: removing the last entry removes the key.
type ScheduleTable map[string]map[string][]string

// Clone returns a deep copy of the table
func (t ScheduleTable) Clone() ScheduleTable {
	out := make(ScheduleTable, len(t))
	for date, slots := range t {
		slotsCopy := make(map[string][]string, len(slots))
		for slot, ids := range slots {
			slotsCopy[slot] = append([]string(nil), ids...)
		}
		out[date] = slotsCopy
	}
	return out
}

// Volunteers returns the volunteer ids assigned to (date, slot)
func (t ScheduleTable) Volunteers(date, slot string) []string {
	slots, ok := t[date]
	if !ok {
		return nil
	}
	return slots[slot]
}

// Contains reports whether volunteerID is assigned to (date, slot)
func (t ScheduleTable) Contains(date, slot, volunteerID string) bool {
	for _, id := range t.Volunteers(date, slot) {
		if id == volunteerID {
			return true
		}
	}
	return false
}

// Add appends volunteerID to (date, slot). Returns false and leaves the table
// untouched if the volunteer is already there.
func (t ScheduleTable) Add(date, slot, volunteerID string) bool {
	if t.Contains(date, slot, volunteerID) {
		return false
	}
	slots, ok := t[date]
	if !ok {
		slots = make(map[string][]string)
		t[date] = slots
	}
	slots[slot] = append(slots[slot], volunteerID)
	return true
}

// Remove deletes volunteerID from (date, slot), pruning the slot and then the date
// when they become empty. Returns false if nothing was removed.
func (t ScheduleTable) Remove(date, slot, volunteerID string) bool {
	slots, ok := t[date]
	if !ok {
		return false
	}
	ids, ok := slots[slot]
	if !ok {
		return false
	}

	kept := make([]string, 0, len(ids))
	removed := false
	for _, id := range ids {
		if id == volunteerID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return false
	}

	if len(kept) == 0 {
		delete(slots, slot)
	} else {
		slots[slot] = kept
	}
	t.pruneDate(date)
	return true
}

// RemoveSlot deletes the whole (date, slot) entry, pruning the date if it becomes empty
func (t ScheduleTable) RemoveSlot(date, slot string) bool {
	slots, ok := t[date]
	if !ok {
		return false
	}
	if _, ok := slots[slot]; !ok {
		return false
	}
	delete(slots, slot)
	t.pruneDate(date)
	return true
}

// Prune drops empty slot lists and empty dates left behind by older writers
func (t ScheduleTable) Prune() {
	for date, slots := range t {
		for slot, ids := range slots {
			if len(ids) == 0 {
				delete(slots, slot)
			}
		}
		t.pruneDate(date)
	}
}

// Between returns the dates in [from, to] (inclusive, YYYY-MM-DD compared lexically).
// Empty bounds are open.
func (t ScheduleTable) Between(from, to string) ScheduleTable {
	out := make(ScheduleTable)
	for date, slots := range t {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		out[date] = slots
	}
	return out.Clone()
}

// Dates returns the table's dates in ascending order
func (t ScheduleTable) Dates() []string {
	dates := make([]string, 0, len(t))
	for date := range t {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

func (t ScheduleTable) pruneDate(date string) {
	if slots, ok := t[date]; ok && len(slots) == 0 {
		delete(t, date)
	}
}
