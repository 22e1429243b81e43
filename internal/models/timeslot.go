package models

import "fmt"

// Day identifies a school day. The timetable covers Monday through Friday.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Period bounds for a school day.
const (
	MinPeriod = 1
	MaxPeriod = 6
)

var dayNames = map[Day]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

var dayIndex = map[string]Day{
	"MONDAY":    Monday,
	"TUESDAY":   Tuesday,
	"WEDNESDAY": Wednesday,
	"THURSDAY":  Thursday,
	"FRIDAY":    Friday,
}

// String returns the English day name.
func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// Valid reports whether the day falls inside the school week.
func (d Day) Valid() bool {
	return d >= Monday && d <= Friday
}

// ParseDay resolves a day name such as "MONDAY" (case-insensitive prefix forms
// are not accepted; storage uses the full uppercase name).
func ParseDay(name string) (Day, error) {
	if d, ok := dayIndex[name]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown day %q", name)
}

// Days returns the school week in chronological order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// TimeSlot identifies one cell column of the weekly grid: a (day, period)
// pair. Values are compared by equality; the full domain is 5 days x 6
// periods.
type TimeSlot struct {
	Day    Day
	Period int
}

// Valid reports whether the slot lies inside the 5x6 week.
func (t TimeSlot) Valid() bool {
	return t.Day.Valid() && t.Period >= MinPeriod && t.Period <= MaxPeriod
}

func (t TimeSlot) String() string {
	return fmt.Sprintf("%s period %d", t.Day, t.Period)
}

// WeekSlots enumerates every slot of the week in deterministic order:
// days chronologically, periods ascending.
func WeekSlots() []TimeSlot {
	slots := make([]TimeSlot, 0, len(dayNames)*MaxPeriod)
	for _, day := range Days() {
		for period := MinPeriod; period <= MaxPeriod; period++ {
			slots = append(slots, TimeSlot{Day: day, Period: period})
		}
	}
	return slots
}

// ClassRef identifies a homeroom group by grade and section, e.g. 3-2.
type ClassRef struct {
	Grade   int
	Section int
}

// Valid reports whether grade and section are positive.
func (c ClassRef) Valid() bool {
	return c.Grade > 0 && c.Section > 0
}

func (c ClassRef) String() string {
	return fmt.Sprintf("%d-%d", c.Grade, c.Section)
}

func classLess(a, b ClassRef) bool {
	if a.Grade != b.Grade {
		return a.Grade < b.Grade
	}
	return a.Section < b.Section
}
