package models

import "sort"

// AbsenceCalendar records when teachers are away (leave, off-site duty,
// business trips). Entries are either a single (day, period) slot or a whole
// day. The calendar is static reference data for the duration of a
// generation run; lookups never mutate it.
type AbsenceCalendar struct {
	slots    map[string]map[TimeSlot]struct{}
	fullDays map[string]map[Day]struct{}
}

// NewAbsenceCalendar returns an empty calendar.
func NewAbsenceCalendar() *AbsenceCalendar {
	return &AbsenceCalendar{
		slots:    make(map[string]map[TimeSlot]struct{}),
		fullDays: make(map[string]map[Day]struct{}),
	}
}

// MarkAbsent records the teacher as away for one slot.
func (c *AbsenceCalendar) MarkAbsent(teacher string, slot TimeSlot) {
	if teacher == "" || !slot.Valid() {
		return
	}
	if c.slots[teacher] == nil {
		c.slots[teacher] = make(map[TimeSlot]struct{})
	}
	c.slots[teacher][slot] = struct{}{}
}

// MarkAbsentAllDay records the teacher as away for the whole day.
func (c *AbsenceCalendar) MarkAbsentAllDay(teacher string, day Day) {
	if teacher == "" || !day.Valid() {
		return
	}
	if c.fullDays[teacher] == nil {
		c.fullDays[teacher] = make(map[Day]struct{})
	}
	c.fullDays[teacher][day] = struct{}{}
}

// IsAbsent reports whether the teacher is away at the given slot.
func (c *AbsenceCalendar) IsAbsent(teacher string, slot TimeSlot) bool {
	if days, ok := c.fullDays[teacher]; ok {
		if _, away := days[slot.Day]; away {
			return true
		}
	}
	if slots, ok := c.slots[teacher]; ok {
		if _, away := slots[slot]; away {
			return true
		}
	}
	return false
}

// AbsentTeachers returns the names of every teacher away at the given slot,
// sorted for deterministic audits.
func (c *AbsenceCalendar) AbsentTeachers(slot TimeSlot) []string {
	seen := make(map[string]struct{})
	for teacher, days := range c.fullDays {
		if _, away := days[slot.Day]; away {
			seen[teacher] = struct{}{}
		}
	}
	for teacher, slots := range c.slots {
		if _, away := slots[slot]; away {
			seen[teacher] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for teacher := range seen {
		names = append(names, teacher)
	}
	sort.Strings(names)
	return names
}
