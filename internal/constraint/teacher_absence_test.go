package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamabiko/timetable/internal/models"
)

func TestTeacherAbsenceCheck(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()
	c := NewTeacherAbsence(school.Absences())

	away := models.TimeSlot{Day: models.Tuesday, Period: 3}
	ok, reason := c.Check(sched, school, away, models.Assignment{Class: class21, Subject: "english", Teacher: models.Teacher{Name: "suzuki"}})
	assert.False(t, ok)
	assert.Contains(t, reason, "suzuki")

	// Same teacher one period later is fine.
	ok, _ = c.Check(sched, school, models.TimeSlot{Day: models.Tuesday, Period: 4},
		models.Assignment{Class: class21, Subject: "english", Teacher: models.Teacher{Name: "suzuki"}})
	assert.True(t, ok)

	// Whole-day absence covers every period.
	ok, _ = c.Check(sched, school, models.TimeSlot{Day: models.Friday, Period: 6},
		models.Assignment{Class: class21, Subject: "science", Teacher: models.Teacher{Name: "sato"}})
	assert.False(t, ok)
}

func TestTeacherAbsenceResolvesViaEligibility(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()
	c := NewTeacherAbsence(school.Absences())

	// No explicit teacher: suzuki is the eligible english teacher for 2-1.
	ok, _ := c.Check(sched, school, models.TimeSlot{Day: models.Tuesday, Period: 3},
		models.Assignment{Class: class21, Subject: "english"})
	assert.False(t, ok)

	// Unresolvable teacher passes.
	ok, _ = c.Check(sched, school, models.TimeSlot{Day: models.Tuesday, Period: 3},
		models.Assignment{Class: class21, Subject: "art"})
	assert.True(t, ok)
}

func TestTeacherAbsenceValidate(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()
	place(t, sched, models.TimeSlot{Day: models.Tuesday, Period: 3}, class21, "english", "suzuki")
	place(t, sched, models.TimeSlot{Day: models.Friday, Period: 2}, class21, "science", "sato")
	place(t, sched, models.TimeSlot{Day: models.Monday, Period: 1}, class11, "math", "tanaka")

	result := NewTeacherAbsence(school.Absences()).Validate(sched, school)
	require.Len(t, result.Violations, 2)
	for _, v := range result.Violations {
		assert.Equal(t, models.SeverityError, v.Severity)
	}
}
