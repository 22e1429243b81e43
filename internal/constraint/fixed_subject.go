package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// FixedSubject protects immovable parts of the grid. Check refuses writes
// into locked cells, over protected subjects, and anywhere inside a test
// period. Validate flags non-protected lessons sitting in test periods as
// errors and protected lessons left unlocked as warnings.
type FixedSubject struct {
	meta
}

// NewFixedSubject builds the rule.
func NewFixedSubject() *FixedSubject {
	return &FixedSubject{
		meta: meta{
			name:        "fixed_subject",
			description: "locked cells, protected subjects and test periods must stay untouched",
			ctype:       TypeHard,
			priority:    PriorityCritical,
		},
	}
}

func (c *FixedSubject) Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	if sched.IsLocked(slot, a.Class) {
		return false, fmt.Sprintf("cell at %s for %s is locked", slot, a.Class)
	}
	if existing, ok := sched.Get(slot, a.Class); ok && school.IsProtected(existing.Subject) {
		return false, fmt.Sprintf("cell holds protected subject %s", existing.Subject)
	}
	if school.IsTestPeriod(slot) && !school.IsProtected(a.Subject) {
		return false, fmt.Sprintf("%s falls inside a test period", slot)
	}
	return true, ""
}

func (c *FixedSubject) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, placed := range sched.All() {
		a := placed.Assignment
		if school.IsTestPeriod(placed.Slot) && !school.IsProtected(a.Subject) {
			result.Violations = append(result.Violations, models.ConstraintViolation{
				Description: fmt.Sprintf("%s for %s occupies test period %s",
					a.Subject, a.Class, placed.Slot),
				Slot:       placed.Slot,
				Assignment: a,
				Severity:   models.SeverityError,
			})
			continue
		}
		if school.IsProtected(a.Subject) && !sched.IsLocked(placed.Slot, a.Class) {
			result.Violations = append(result.Violations, models.ConstraintViolation{
				Description: fmt.Sprintf("protected subject %s for %s at %s is not locked",
					a.Subject, a.Class, placed.Slot),
				Slot:       placed.Slot,
				Assignment: a,
				Severity:   models.SeverityWarning,
			})
		}
	}
	if result.IsValid() {
		result.Message = "fixed placements intact"
	} else {
		result.Message = fmt.Sprintf("%d fixed-placement findings", len(result.Violations))
	}
	return result
}
