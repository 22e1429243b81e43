package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// DailyDuplicate caps how many times one subject may appear for a class on a
// single day. The cap depends on the check level and on whether the subject
// is core; protected subjects are exempt.
type DailyDuplicate struct {
	meta
	level CheckLevel
}

// NewDailyDuplicate builds the rule at the given strictness level.
func NewDailyDuplicate(level CheckLevel) *DailyDuplicate {
	return &DailyDuplicate{
		meta: meta{
			name:        "daily_duplicate",
			description: "a class must not have the same subject too many times in one day",
			ctype:       TypeHard,
			priority:    PriorityCritical,
		},
		level: level,
	}
}

func (c *DailyDuplicate) Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	if school.IsProtected(a.Subject) {
		return true, ""
	}
	max := MaxDailyOccurrences(school, a.Subject, c.level)
	count := 1 // the candidate itself
	for period, subject := range sched.DailySubjects(a.Class, slot.Day) {
		if period == slot.Period {
			// The target cell is being replaced; its occupant does
			// not count.
			continue
		}
		if subject == a.Subject {
			count++
		}
	}
	if count > max {
		return false, fmt.Sprintf("%s would appear %d times for %s on %s (max %d)",
			a.Subject, count, a.Class, slot.Day, max)
	}
	return true, ""
}

func (c *DailyDuplicate) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, class := range school.Classes() {
		for _, day := range models.Days() {
			daily := sched.DailySubjects(class, day)
			counts := make(map[models.Subject]int)
			firstPeriod := make(map[models.Subject]int)
			for period := models.MinPeriod; period <= models.MaxPeriod; period++ {
				subject, ok := daily[period]
				if !ok || school.IsProtected(subject) {
					continue
				}
				counts[subject]++
				if _, seen := firstPeriod[subject]; !seen {
					firstPeriod[subject] = period
				}
			}
			for period := models.MinPeriod; period <= models.MaxPeriod; period++ {
				subject, ok := daily[period]
				if !ok || firstPeriod[subject] != period {
					continue
				}
				max := MaxDailyOccurrences(school, subject, c.level)
				if counts[subject] <= max {
					continue
				}
				slot := models.TimeSlot{Day: day, Period: period}
				a, _ := sched.Get(slot, class)
				result.Violations = append(result.Violations, models.ConstraintViolation{
					Description: fmt.Sprintf("%s appears %d times for %s on %s (max %d)",
						subject, counts[subject], class, day, max),
					Slot:       slot,
					Assignment: a,
					Severity:   models.SeverityError,
				})
			}
		}
	}
	if result.IsValid() {
		result.Message = "no daily subject duplication"
	} else {
		result.Message = fmt.Sprintf("%d daily duplication violations", len(result.Violations))
	}
	return result
}
