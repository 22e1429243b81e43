package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// CohortSync keeps joint cohorts coherent: cohort members run one shared
// lesson, so whenever two or more members have something scheduled at a slot
// the subjects must agree. Slots where only one member is placed pass; the
// rest of the cohort simply has not been filled in yet.
type CohortSync struct {
	meta
}

// NewCohortSync builds the rule.
func NewCohortSync() *CohortSync {
	return &CohortSync{
		meta: meta{
			name:        "cohort_sync",
			description: "joint cohort members must share one subject per slot",
			ctype:       TypeHard,
			priority:    PriorityHigh,
		},
	}
}

func (c *CohortSync) Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	cohort, ok := school.CohortOf(a.Class)
	if !ok {
		return true, ""
	}
	for _, member := range cohort {
		if member == a.Class {
			continue
		}
		other, placed := sched.Get(slot, member)
		if !placed {
			continue
		}
		if other.Subject != a.Subject {
			return false, fmt.Sprintf("cohort member %s already has %s at %s",
				member, other.Subject, slot)
		}
	}
	return true, ""
}

func (c *CohortSync) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, cohort := range school.JointCohorts() {
		for _, slot := range models.WeekSlots() {
			var placed []models.Assignment
			for _, member := range cohort {
				if a, ok := sched.Get(slot, member); ok {
					placed = append(placed, a)
				}
			}
			if len(placed) < 2 {
				continue
			}
			mismatch := false
			for _, a := range placed[1:] {
				if a.Subject != placed[0].Subject {
					mismatch = true
					break
				}
			}
			if !mismatch {
				continue
			}
			result.Violations = append(result.Violations, models.ConstraintViolation{
				Description: fmt.Sprintf("cohort %s splits at %s: %s",
					joinClasses(cohortRefs(placed)), slot, joinSubjects(placed)),
				Slot:       slot,
				Assignment: placed[0],
				Severity:   models.SeverityError,
			})
		}
	}
	if result.IsValid() {
		result.Message = "joint cohorts coherent"
	} else {
		result.Message = fmt.Sprintf("%d cohort splits", len(result.Violations))
	}
	return result
}

func cohortRefs(assignments []models.Assignment) []models.ClassRef {
	refs := make([]models.ClassRef, len(assignments))
	for i, a := range assignments {
		refs[i] = a.Class
	}
	return refs
}

func joinSubjects(assignments []models.Assignment) string {
	out := ""
	for i, a := range assignments {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%s", a.Class, a.Subject)
	}
	return out
}
