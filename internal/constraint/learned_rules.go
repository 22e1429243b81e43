package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// Rule is a learned placement veto distilled from operator corrections. Rules
// run before the standing constraint set and only ever reject; they carry no
// audit mode.
type Rule struct {
	Name          string
	RejectMessage string
	Condition     func(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) bool
}

// Rejects reports whether the rule vetoes the candidate placement.
func (r Rule) Rejects(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) bool {
	if r.Condition == nil {
		return false
	}
	return r.Condition(sched, school, slot, a)
}

// TeacherPeriodLimitRule vetoes placements that would push the named teacher
// past maxClasses simultaneous lessons at the slot. Learned from operators
// repeatedly undoing over-packed supervision periods.
func TeacherPeriodLimitRule(teacherName string, slot models.TimeSlot, maxClasses int) Rule {
	return Rule{
		Name: fmt.Sprintf("teacher_period_limit:%s", teacherName),
		RejectMessage: fmt.Sprintf("teacher %s handles at most %d classes at %s",
			teacherName, maxClasses, slot),
		Condition: func(sched *models.Schedule, school *models.School, target models.TimeSlot, a models.Assignment) bool {
			if target != slot {
				return false
			}
			teacher, ok := school.EffectiveTeacher(a)
			if !ok || teacher.Name != teacherName {
				return false
			}
			count := 1
			for _, other := range sched.AtSlot(target) {
				if other.Class == a.Class {
					continue
				}
				if t, ok := school.EffectiveTeacher(other); ok && t.Name == teacherName {
					count++
				}
			}
			return count > maxClasses
		},
	}
}

// ParentSubjectRule vetoes parent-class subjects outside the allowed set
// whenever the paired exchange class is in an independent activity. A
// stricter, learnable variant of the built-in pairing rule for schools that
// narrow the allowed set further.
func ParentSubjectRule(exchange models.ClassRef, allowed []models.Subject) Rule {
	allowedSet := make(map[models.Subject]struct{}, len(allowed))
	for _, subject := range allowed {
		allowedSet[subject] = struct{}{}
	}
	return Rule{
		Name: fmt.Sprintf("parent_subject:%s", exchange),
		RejectMessage: fmt.Sprintf("parent of %s limited to %v during independent activities",
			exchange, allowed),
		Condition: func(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) bool {
			parent, ok := school.ParentOf(exchange)
			if !ok || parent != a.Class {
				return false
			}
			side, placed := sched.Get(slot, exchange)
			if !placed || !school.IsIndependentActivity(side.Subject) {
				return false
			}
			_, ok = allowedSet[a.Subject]
			return !ok
		},
	}
}
