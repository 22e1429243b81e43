package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// TeacherAbsence refuses placements whose effective teacher is away at the
// slot. Assignments whose teacher cannot be resolved pass; data completeness
// is policed upstream, not here.
type TeacherAbsence struct {
	meta
	absences AbsenceLookup
}

// NewTeacherAbsence builds the rule over the given absence source.
func NewTeacherAbsence(absences AbsenceLookup) *TeacherAbsence {
	return &TeacherAbsence{
		meta: meta{
			name:        "teacher_absence",
			description: "a lesson must not be scheduled while its teacher is away",
			ctype:       TypeHard,
			priority:    PriorityCritical,
		},
		absences: absences,
	}
}

func (c *TeacherAbsence) teacher(school *models.School, a models.Assignment) (models.Teacher, bool) {
	return school.EffectiveTeacher(a)
}

func (c *TeacherAbsence) Check(_ *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	teacher, ok := c.teacher(school, a)
	if !ok {
		return true, ""
	}
	if c.absences.IsAbsent(teacher.Name, slot) {
		return false, fmt.Sprintf("teacher %s is away at %s", teacher.Name, slot)
	}
	return true, ""
}

func (c *TeacherAbsence) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, placed := range sched.All() {
		teacher, ok := c.teacher(school, placed.Assignment)
		if !ok {
			continue
		}
		if !c.absences.IsAbsent(teacher.Name, placed.Slot) {
			continue
		}
		result.Violations = append(result.Violations, models.ConstraintViolation{
			Description: fmt.Sprintf("teacher %s is away at %s but scheduled for %s",
				teacher.Name, placed.Slot, placed.Assignment.Class),
			Slot:       placed.Slot,
			Assignment: placed.Assignment,
			Severity:   models.SeverityError,
		})
	}
	if result.IsValid() {
		result.Message = "no lessons scheduled against teacher absences"
	} else {
		result.Message = fmt.Sprintf("%d lessons collide with teacher absences", len(result.Violations))
	}
	return result
}
