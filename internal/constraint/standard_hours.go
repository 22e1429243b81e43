package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// standardHoursTolerance is how far a weekly count may drift from the
// standard before the audit warns.
const standardHoursTolerance = 1

// StandardHours grades how close each class's weekly subject counts come to
// the curriculum standard. It never blocks a placement; mid-generation counts
// are always short, so only the full audit says anything.
type StandardHours struct {
	meta
}

// NewStandardHours builds the rule.
func NewStandardHours() *StandardHours {
	return &StandardHours{
		meta: meta{
			name:        "standard_hours",
			description: "weekly subject counts should track the curriculum standard",
			ctype:       TypeSoft,
			priority:    PriorityMedium,
		},
	}
}

func (c *StandardHours) Check(_ *models.Schedule, _ *models.School, _ models.TimeSlot, _ models.Assignment) (bool, string) {
	return true, ""
}

func (c *StandardHours) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, class := range school.Classes() {
		placedFirst := make(map[models.Subject]models.PlacedAssignment)
		for _, placed := range sched.ByClass(class) {
			if _, ok := placedFirst[placed.Assignment.Subject]; !ok {
				placedFirst[placed.Assignment.Subject] = placed
			}
		}
		for _, subject := range school.StandardHoursTable() {
			first, placed := placedFirst[subject]
			if !placed {
				// Subject untouched for this class; counts cannot
				// drift until something is placed.
				continue
			}
			standard := school.StandardHoursFor(subject)
			count := sched.CountSubjectWeek(class, subject)
			drift := count - standard
			if drift < 0 {
				drift = -drift
			}
			if drift <= standardHoursTolerance {
				continue
			}
			result.Violations = append(result.Violations, models.ConstraintViolation{
				Description: fmt.Sprintf("%s has %s %d times this week (standard %d)",
					class, subject, count, standard),
				Slot:       first.Slot,
				Assignment: first.Assignment,
				Severity:   models.SeverityWarning,
			})
		}
	}
	if result.IsValid() {
		result.Message = "weekly counts within tolerance of the standard"
	} else {
		result.Message = fmt.Sprintf("%d subjects drift from standard hours", len(result.Violations))
	}
	return result
}
