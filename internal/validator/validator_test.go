package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamabiko/timetable/internal/constraint"
	"github.com/yamabiko/timetable/internal/models"
)

var (
	class11 = models.ClassRef{Grade: 1, Section: 1}
	class12 = models.ClassRef{Grade: 1, Section: 2}
	class21 = models.ClassRef{Grade: 2, Section: 1}
	class26 = models.ClassRef{Grade: 2, Section: 6}
)

func newTestSchool(t *testing.T) *models.School {
	t.Helper()
	absences := models.NewAbsenceCalendar()
	absences.MarkAbsent("suzuki", models.TimeSlot{Day: models.Tuesday, Period: 3})

	return models.NewSchool(models.SchoolConfig{
		Classes: []models.ClassRef{class11, class12, class21, class26},
		ExchangePairs: map[models.ClassRef]models.ClassRef{
			class26: class21,
		},
		Eligibility: []models.TeacherEligibility{
			{Teacher: models.Teacher{Name: "tanaka"}, Subject: "math", Class: class11},
			{Teacher: models.Teacher{Name: "suzuki"}, Subject: "english", Class: class21},
		},
		Absences: absences,
	})
}

func newTestValidator(t *testing.T, school *models.School, rules ...constraint.Rule) *Validator {
	t.Helper()
	return New(constraint.DefaultSet(school.Absences(), constraint.LevelNormal), rules, nil)
}

func mustPlace(t *testing.T, sched *models.Schedule, slot models.TimeSlot, class models.ClassRef, subject models.Subject, teacher string) {
	t.Helper()
	require.NoError(t, sched.Assign(slot, models.Assignment{
		Class: class, Subject: subject, Teacher: models.Teacher{Name: teacher},
	}))
}

func TestCheckBeforeAssignmentStructuralRefusals(t *testing.T) {
	school := newTestSchool(t)
	v := newTestValidator(t, school)
	sched := models.NewSchedule()

	ok, reason := v.CheckBeforeAssignment(sched, school, models.TimeSlot{Day: models.Monday, Period: 9},
		models.Assignment{Class: class11, Subject: "math"})
	assert.False(t, ok)
	assert.Contains(t, reason, "outside the school week")

	slot := models.TimeSlot{Day: models.Monday, Period: 1}
	sched.Lock(slot, class11)
	ok, reason = v.CheckBeforeAssignment(sched, school, slot, models.Assignment{Class: class11, Subject: "math"})
	assert.False(t, ok)
	assert.Contains(t, reason, "locked")

	occupied := models.TimeSlot{Day: models.Monday, Period: 2}
	mustPlace(t, sched, occupied, class11, "assembly", "")
	ok, reason = v.CheckBeforeAssignment(sched, school, occupied, models.Assignment{Class: class11, Subject: "math"})
	assert.False(t, ok)
	assert.Contains(t, reason, "holds protected")
}

func TestCheckBeforeAssignmentJudgesReplacement(t *testing.T) {
	school := newTestSchool(t)
	v := newTestValidator(t, school)
	sched := models.NewSchedule()

	slot := models.TimeSlot{Day: models.Monday, Period: 1}
	mustPlace(t, sched, slot, class11, "math", "tanaka")

	// Re-confirming the standing placement is not self-conflicting.
	ok, reason := v.CheckBeforeAssignment(sched, school, slot,
		models.Assignment{Class: class11, Subject: "math", Teacher: models.Teacher{Name: "tanaka"}})
	assert.True(t, ok)
	assert.Empty(t, reason)

	// Swapping an unprotected occupant for another subject is judged on the
	// replacement alone.
	ok, _ = v.CheckBeforeAssignment(sched, school, slot,
		models.Assignment{Class: class11, Subject: "art"})
	assert.True(t, ok)

	// The replacement still answers to the constraints: math already sits at
	// another period of the day, so a second math is refused where the level
	// caps it at one.
	mustPlace(t, sched, models.TimeSlot{Day: models.Monday, Period: 3}, class11, "art", "")
	strict := New(constraint.DefaultSet(school.Absences(), constraint.LevelStrict), nil, nil)
	ok, reason = strict.CheckBeforeAssignment(sched, school, models.TimeSlot{Day: models.Monday, Period: 3},
		models.Assignment{Class: class11, Subject: "math", Teacher: models.Teacher{Name: "tanaka"}})
	assert.False(t, ok)
	assert.Contains(t, reason, "daily_duplicate")
}

func TestCheckBeforeAssignmentLearnedRuleRunsFirst(t *testing.T) {
	school := newTestSchool(t)
	slot := models.TimeSlot{Day: models.Tuesday, Period: 3}
	rule := constraint.Rule{
		Name:          "no_afternoon_math",
		RejectMessage: "math is vetoed here",
		Condition: func(_ *models.Schedule, _ *models.School, s models.TimeSlot, a models.Assignment) bool {
			return s == slot && a.Subject == "math"
		},
	}
	v := newTestValidator(t, school, rule)
	sched := models.NewSchedule()

	// The slot also collides with suzuki's absence for english, but the
	// learned overlay answers first for math.
	ok, reason := v.CheckBeforeAssignment(sched, school, slot,
		models.Assignment{Class: class11, Subject: "math", Teacher: models.Teacher{Name: "tanaka"}})
	assert.False(t, ok)
	assert.Equal(t, "no_afternoon_math: math is vetoed here", reason)
}

func TestCheckBeforeAssignmentNamesRejectingConstraint(t *testing.T) {
	school := newTestSchool(t)
	v := newTestValidator(t, school)
	sched := models.NewSchedule()

	ok, reason := v.CheckBeforeAssignment(sched, school, models.TimeSlot{Day: models.Tuesday, Period: 3},
		models.Assignment{Class: class21, Subject: "english", Teacher: models.Teacher{Name: "suzuki"}})
	assert.False(t, ok)
	assert.Contains(t, reason, "teacher_absence: ")

	slot := models.TimeSlot{Day: models.Monday, Period: 1}
	mustPlace(t, sched, slot, class11, "math", "tanaka")
	ok, reason = v.CheckBeforeAssignment(sched, school, slot,
		models.Assignment{Class: class12, Subject: "math", Teacher: models.Teacher{Name: "tanaka"}})
	assert.False(t, ok)
	assert.Contains(t, reason, "teacher_conflict: ")
}

func TestCheckBeforeAssignmentAllows(t *testing.T) {
	school := newTestSchool(t)
	v := newTestValidator(t, school)
	sched := models.NewSchedule()

	ok, reason := v.CheckBeforeAssignment(sched, school, models.TimeSlot{Day: models.Monday, Period: 1},
		models.Assignment{Class: class11, Subject: "math", Teacher: models.Teacher{Name: "tanaka"}})
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidateScheduleDeterministic(t *testing.T) {
	school := newTestSchool(t)
	v := newTestValidator(t, school)
	sched := models.NewSchedule()

	slot := models.TimeSlot{Day: models.Monday, Period: 1}
	mustPlace(t, sched, slot, class11, "math", "tanaka")
	mustPlace(t, sched, slot, class12, "math", "tanaka")
	mustPlace(t, sched, models.TimeSlot{Day: models.Tuesday, Period: 3}, class21, "english", "suzuki")

	first := v.ValidateSchedule(sched, school)
	second := v.ValidateSchedule(sched, school)
	assert.Equal(t, first, second)

	assert.Equal(t, 2, first.ErrorCount())
	// standard_hours warns for each subject placed far short of its
	// standard: math for both grade-1 classes, english for 2-1.
	assert.Equal(t, 3, first.WarningCount())
	assert.False(t, first.Valid())

	// Results follow the set's evaluation order.
	names := make([]string, len(first.Results))
	for i, r := range first.Results {
		names[i] = r.ConstraintName
	}
	assert.Equal(t, []string{
		"daily_duplicate", "fixed_subject", "gym_usage", "teacher_absence",
		"teacher_conflict", "cohort_sync", "exchange_sync", "standard_hours",
	}, names)
}

func TestReportCounts(t *testing.T) {
	report := Report{Results: []models.ConstraintResult{
		{ConstraintName: "a", Violations: []models.ConstraintViolation{
			{Severity: models.SeverityError},
			{Severity: models.SeverityWarning},
		}},
		{ConstraintName: "b"},
	}}
	assert.Equal(t, 2, report.TotalViolations())
	assert.Equal(t, 1, report.ErrorCount())
	assert.Equal(t, 1, report.WarningCount())
	assert.False(t, report.Valid())
	assert.True(t, Report{}.Valid())
}
