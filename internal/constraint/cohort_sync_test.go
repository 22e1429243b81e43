package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamabiko/timetable/internal/models"
)

func TestCohortSyncCheck(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()
	slot := models.TimeSlot{Day: models.Monday, Period: 1}
	c := NewCohortSync()

	// First member placed freely.
	ok, _ := c.Check(sched, school, slot, models.Assignment{Class: class15, Subject: "daily_living"})
	assert.True(t, ok)

	place(t, sched, slot, class15, "daily_living", "watanabe")

	// Partner must match.
	ok, reason := c.Check(sched, school, slot, models.Assignment{Class: class25, Subject: "math"})
	assert.False(t, ok)
	assert.Contains(t, reason, "daily_living")

	ok, _ = c.Check(sched, school, slot, models.Assignment{Class: class25, Subject: "daily_living"})
	assert.True(t, ok)

	// Classes outside any cohort are unconstrained.
	ok, _ = c.Check(sched, school, slot, models.Assignment{Class: class11, Subject: "math"})
	assert.True(t, ok)
}

func TestCohortSyncValidate(t *testing.T) {
	school := newFixtureSchool(t)
	sched := models.NewSchedule()

	aligned := models.TimeSlot{Day: models.Monday, Period: 1}
	place(t, sched, aligned, class15, "work_study", "watanabe")
	place(t, sched, aligned, class25, "work_study", "watanabe")

	split := models.TimeSlot{Day: models.Monday, Period: 2}
	place(t, sched, split, class15, "math", "tanaka")
	place(t, sched, split, class25, "english", "suzuki")

	half := models.TimeSlot{Day: models.Monday, Period: 3}
	place(t, sched, half, class15, "art", "")

	result := NewCohortSync().Validate(sched, school)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, split, result.Violations[0].Slot)
	assert.Contains(t, result.Violations[0].Description, "1-5")
}
