package constraint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yamabiko/timetable/internal/models"
)

// TeacherConflict refuses double-booking: one teacher in front of two
// unrelated classes at the same slot. Sanctioned sharing is excused:
// combined-lesson supervisors run every class at once, joint-cohort members
// share one lesson, and an exchange class doing an independent activity may
// keep its supervisor while the parent class runs under the same name.
type TeacherConflict struct {
	meta
}

// NewTeacherConflict builds the rule.
func NewTeacherConflict() *TeacherConflict {
	return &TeacherConflict{
		meta: meta{
			name:        "teacher_conflict",
			description: "a teacher must not be booked for two unrelated classes at the same slot",
			ctype:       TypeHard,
			priority:    PriorityCritical,
		},
	}
}

// excused reports whether two classes may legitimately share a teacher at
// one slot.
func (c *TeacherConflict) excused(school *models.School, a, b models.Assignment) bool {
	if school.SameCohort([]models.ClassRef{a.Class, b.Class}) {
		return true
	}
	// Exchange class in an independent activity with its own parent.
	if parent, ok := school.ParentOf(a.Class); ok && parent == b.Class && school.IsIndependentActivity(a.Subject) {
		return true
	}
	if parent, ok := school.ParentOf(b.Class); ok && parent == a.Class && school.IsIndependentActivity(b.Subject) {
		return true
	}
	return false
}

func (c *TeacherConflict) Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	teacher, ok := school.EffectiveTeacher(a)
	if !ok {
		return true, ""
	}
	if school.IsCombinedLessonTeacher(teacher.Name) {
		return true, ""
	}
	for _, other := range sched.AtSlot(slot) {
		if other.Class == a.Class {
			// Target cell occupant; the candidate replaces it.
			continue
		}
		otherTeacher, ok := school.EffectiveTeacher(other)
		if !ok || otherTeacher.Name != teacher.Name {
			continue
		}
		if c.excused(school, a, other) {
			continue
		}
		return false, fmt.Sprintf("teacher %s is already teaching %s at %s",
			teacher.Name, other.Class, slot)
	}
	return true, ""
}

func (c *TeacherConflict) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, slot := range models.WeekSlots() {
		byTeacher := make(map[string][]models.Assignment)
		for _, a := range sched.AtSlot(slot) {
			teacher, ok := school.EffectiveTeacher(a)
			if !ok || school.IsCombinedLessonTeacher(teacher.Name) {
				continue
			}
			byTeacher[teacher.Name] = append(byTeacher[teacher.Name], a)
		}
		names := make([]string, 0, len(byTeacher))
		for name := range byTeacher {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			assignments := byTeacher[name]
			if len(assignments) < 2 || c.allExcused(school, assignments) {
				continue
			}
			classes := make([]string, len(assignments))
			for i, a := range assignments {
				classes[i] = a.Class.String()
			}
			result.Violations = append(result.Violations, models.ConstraintViolation{
				Description: fmt.Sprintf("teacher %s is booked for classes %s at %s",
					name, strings.Join(classes, ", "), slot),
				Slot:       slot,
				Assignment: assignments[0],
				Severity:   models.SeverityError,
			})
		}
	}
	if result.IsValid() {
		result.Message = "no teacher double-bookings"
	} else {
		result.Message = fmt.Sprintf("%d teacher double-bookings", len(result.Violations))
	}
	return result
}

// allExcused reports whether every pair in the group is sanctioned sharing.
func (c *TeacherConflict) allExcused(school *models.School, assignments []models.Assignment) bool {
	for i := range assignments {
		for j := i + 1; j < len(assignments); j++ {
			if !c.excused(school, assignments[i], assignments[j]) {
				return false
			}
		}
	}
	return true
}
