package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamabiko/timetable/internal/models"
)

func TestFixedSubjectCheck(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()
	c := NewFixedSubject()

	// Locked cell.
	locked := models.TimeSlot{Day: models.Monday, Period: 1}
	sched.Lock(locked, class11)
	ok, reason := c.Check(sched, school, locked, models.Assignment{Class: class11, Subject: "math"})
	assert.False(t, ok)
	assert.Contains(t, reason, "locked")

	// Protected occupant.
	slot := models.TimeSlot{Day: models.Monday, Period: 2}
	place(t, sched, slot, class11, "homeroom", "")
	ok, reason = c.Check(sched, school, slot, models.Assignment{Class: class11, Subject: "math"})
	assert.False(t, ok)
	assert.Contains(t, reason, "protected")

	// Test period refuses regular subjects but admits protected ones.
	test := models.TimeSlot{Day: models.Wednesday, Period: 1}
	ok, _ = c.Check(sched, school, test, models.Assignment{Class: class11, Subject: "math"})
	assert.False(t, ok)
	ok, _ = c.Check(sched, school, test, models.Assignment{Class: class11, Subject: "test"})
	assert.True(t, ok)

	// Plain empty cell passes.
	ok, _ = c.Check(sched, school, models.TimeSlot{Day: models.Monday, Period: 3},
		models.Assignment{Class: class11, Subject: "math"})
	assert.True(t, ok)
}

func TestFixedSubjectValidate(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()

	// Regular lesson sitting in a test period: error.
	place(t, sched, models.TimeSlot{Day: models.Wednesday, Period: 1}, class11, "math", "tanaka")
	// Protected lesson left unlocked: warning.
	place(t, sched, models.TimeSlot{Day: models.Monday, Period: 1}, class12, "homeroom", "")
	// Protected and locked: clean.
	locked := models.TimeSlot{Day: models.Monday, Period: 1}
	place(t, sched, locked, class11, "homeroom", "")
	sched.Lock(locked, class11)

	result := NewFixedSubject().Validate(sched, school)
	require.Len(t, result.Violations, 2)
	assert.True(t, result.HasErrors())
	assert.True(t, result.HasWarnings())

	bySeverity := map[models.Severity]models.ConstraintViolation{}
	for _, v := range result.Violations {
		bySeverity[v.Severity] = v
	}
	assert.Contains(t, bySeverity[models.SeverityError].Description, "test period")
	assert.Contains(t, bySeverity[models.SeverityWarning].Description, "not locked")
}
