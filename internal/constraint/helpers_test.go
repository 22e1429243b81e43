package constraint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yamabiko/timetable/internal/models"
)

var (
	class11 = models.ClassRef{Grade: 1, Section: 1}
	class12 = models.ClassRef{Grade: 1, Section: 2}
	class15 = models.ClassRef{Grade: 1, Section: 5}
	class21 = models.ClassRef{Grade: 2, Section: 1}
	class25 = models.ClassRef{Grade: 2, Section: 5}
	class26 = models.ClassRef{Grade: 2, Section: 6}
)

// newFixtureSchool builds the shared test school: two regular classes per
// grade, a grade-crossing cohort of the section-5 classes, and exchange class
// 2-6 paired with 2-1.
func newFixtureSchool(t *testing.T) *models.School {
	t.Helper()
	absences := models.NewAbsenceCalendar()
	absences.MarkAbsent("suzuki", models.TimeSlot{Day: models.Tuesday, Period: 3})
	absences.MarkAbsentAllDay("sato", models.Friday)

	return models.NewSchool(models.SchoolConfig{
		Classes: []models.ClassRef{class11, class12, class15, class21, class25, class26},
		ExchangePairs: map[models.ClassRef]models.ClassRef{
			class26: class21,
		},
		JointCohorts:     [][]models.ClassRef{{class15, class25}},
		CombinedTeachers: []string{"principal"},
		Eligibility: []models.TeacherEligibility{
			{Teacher: models.Teacher{Name: "tanaka"}, Subject: "math", Class: class11},
			{Teacher: models.Teacher{Name: "tanaka"}, Subject: "math", Class: class12},
			{Teacher: models.Teacher{Name: "suzuki"}, Subject: "english", Class: class21},
			{Teacher: models.Teacher{Name: "sato"}, Subject: "science", Class: class21},
		},
		TestPeriods: []models.TimeSlot{
			{Day: models.Wednesday, Period: 1},
			{Day: models.Wednesday, Period: 2},
		},
		Absences: absences,
	})
}

func place(t *testing.T, sched *models.Schedule, slot models.TimeSlot, class models.ClassRef, subject models.Subject, teacher string) {
	t.Helper()
	require.NoError(t, sched.Assign(slot, models.Assignment{
		Class:   class,
		Subject: subject,
		Teacher: models.Teacher{Name: teacher},
	}))
}
