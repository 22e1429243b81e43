package constraint

import (
	"fmt"
	"strings"

	"github.com/yamabiko/timetable/internal/models"
)

// GymUsage guards the single shared room: at most one lesson of the shared
// resource subject per slot across the whole school. A joint group (one
// cohort, or an exchange class with its parent) counts as a single lesson.
// Test periods suspend the rule; the room hosts no lessons then.
type GymUsage struct {
	meta
}

// NewGymUsage builds the rule.
func NewGymUsage() *GymUsage {
	return &GymUsage{
		meta: meta{
			name:        "gym_usage",
			description: "the shared room fits one lesson per slot",
			ctype:       TypeHard,
			priority:    PriorityCritical,
		},
	}
}

// usersAt collects the classes holding the shared-resource subject at the
// slot, excluding the candidate's own class.
func (c *GymUsage) usersAt(sched *models.Schedule, school *models.School, slot models.TimeSlot, exclude models.ClassRef) []models.ClassRef {
	var users []models.ClassRef
	for _, a := range sched.AtSlot(slot) {
		if a.Class == exclude {
			continue
		}
		if a.Subject == school.SharedResourceSubject() {
			users = append(users, a.Class)
		}
	}
	return users
}

func (c *GymUsage) Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	if a.Subject != school.SharedResourceSubject() {
		return true, ""
	}
	if school.IsTestPeriod(slot) {
		return true, ""
	}
	users := c.usersAt(sched, school, slot, a.Class)
	if len(users) == 0 {
		return true, ""
	}
	if school.IsJointGroup(append(users, a.Class)) {
		return true, ""
	}
	return false, fmt.Sprintf("the shared room is taken by %s at %s", joinClasses(users), slot)
}

func (c *GymUsage) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, slot := range models.WeekSlots() {
		if school.IsTestPeriod(slot) {
			continue
		}
		var users []models.ClassRef
		var first models.Assignment
		for _, a := range sched.AtSlot(slot) {
			if a.Subject != school.SharedResourceSubject() {
				continue
			}
			if len(users) == 0 {
				first = a
			}
			users = append(users, a.Class)
		}
		if len(users) < 2 || school.IsJointGroup(users) {
			continue
		}
		result.Violations = append(result.Violations, models.ConstraintViolation{
			Description: fmt.Sprintf("classes %s all need the shared room at %s",
				joinClasses(users), slot),
			Slot:       slot,
			Assignment: first,
			Severity:   models.SeverityError,
		})
	}
	if result.IsValid() {
		result.Message = "shared room never double-booked"
	} else {
		result.Message = fmt.Sprintf("%d shared-room clashes", len(result.Violations))
	}
	return result
}

func joinClasses(classes []models.ClassRef) string {
	names := make([]string, len(classes))
	for i, class := range classes {
		names[i] = class.String()
	}
	return strings.Join(names, ", ")
}
