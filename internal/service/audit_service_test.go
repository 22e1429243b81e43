package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamabiko/timetable/internal/constraint"
	"github.com/yamabiko/timetable/internal/dto"
	"github.com/yamabiko/timetable/internal/models"
	appErrors "github.com/yamabiko/timetable/pkg/errors"
)

type stubSchoolSource struct {
	classes     []models.ClassRecord
	subjects    []models.SubjectRecord
	eligibility []models.EligibilityRecord
	pairs       []models.ExchangePairRecord
	cohorts     []models.CohortRecord
	testPeriods []models.TestPeriodRecord
}

func (s *stubSchoolSource) ListClasses(context.Context, string) ([]models.ClassRecord, error) {
	return s.classes, nil
}
func (s *stubSchoolSource) ListSubjects(context.Context) ([]models.SubjectRecord, error) {
	return s.subjects, nil
}
func (s *stubSchoolSource) ListEligibility(context.Context, string) ([]models.EligibilityRecord, error) {
	return s.eligibility, nil
}
func (s *stubSchoolSource) ListExchangePairs(context.Context, string) ([]models.ExchangePairRecord, error) {
	return s.pairs, nil
}
func (s *stubSchoolSource) ListCohorts(context.Context, string) ([]models.CohortRecord, error) {
	return s.cohorts, nil
}
func (s *stubSchoolSource) ListTestPeriods(context.Context, string) ([]models.TestPeriodRecord, error) {
	return s.testPeriods, nil
}

type stubAbsenceSource struct {
	absences []models.AbsenceRecord
}

func (s *stubAbsenceSource) ListByTerm(context.Context, string) ([]models.AbsenceRecord, error) {
	return s.absences, nil
}

type stubSlotSource struct {
	slots []models.SlotRecord
}

func (s *stubSlotSource) ListBySchedule(context.Context, string) ([]models.SlotRecord, error) {
	return s.slots, nil
}

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.values == nil {
		c.values = map[string][]byte{}
	}
	c.values[key] = raw
	c.sets++
	return nil
}

func strPtr(s string) *string { return &s }

func newStubService(t *testing.T, cache ReportCache) *AuditService {
	t.Helper()
	school := &stubSchoolSource{
		classes: []models.ClassRecord{
			{ID: 1, Grade: 1, Section: 1},
			{ID: 2, Grade: 1, Section: 2},
			{ID: 3, Grade: 2, Section: 1},
			{ID: 4, Grade: 2, Section: 6},
		},
		subjects: []models.SubjectRecord{
			{ID: 1, Code: "math", Name: "Mathematics", Core: true, StandardHours: 3},
			{ID: 2, Code: "english", Name: "English", Core: true, StandardHours: 4},
			{ID: 3, Code: "homeroom", Name: "Homeroom", Protected: true, StandardHours: 1},
			{ID: 4, Code: "self_study", Name: "Independent Study", Independent: true},
		},
		eligibility: []models.EligibilityRecord{
			{TeacherName: "tanaka", SubjectCode: "math", Grade: 1, Section: 1},
			{TeacherName: "principal", SubjectCode: "homeroom", Grade: 1, Section: 1, Combined: true},
		},
		pairs: []models.ExchangePairRecord{
			{ExchangeGrade: 2, ExchangeSection: 6, ParentGrade: 2, ParentSection: 1},
		},
		testPeriods: []models.TestPeriodRecord{
			{DayOfWeek: "WEDNESDAY", Period: 1},
		},
	}
	period := 3
	absences := &stubAbsenceSource{absences: []models.AbsenceRecord{
		{TeacherName: "suzuki", DayOfWeek: "TUESDAY", Period: &period},
	}}
	slots := &stubSlotSource{slots: []models.SlotRecord{
		// Double-booked teacher at Monday period 1.
		{ScheduleID: "draft-1", Grade: 1, Section: 1, DayOfWeek: "MONDAY", Period: 1, SubjectCode: "math", TeacherName: strPtr("tanaka")},
		{ScheduleID: "draft-1", Grade: 1, Section: 2, DayOfWeek: "MONDAY", Period: 1, SubjectCode: "math", TeacherName: strPtr("tanaka")},
		// Lesson colliding with suzuki's absence.
		{ScheduleID: "draft-1", Grade: 2, Section: 1, DayOfWeek: "TUESDAY", Period: 3, SubjectCode: "english", TeacherName: strPtr("suzuki")},
		// Locked homeroom.
		{ScheduleID: "draft-1", Grade: 1, Section: 1, DayOfWeek: "MONDAY", Period: 2, SubjectCode: "homeroom", Locked: true},
	}}

	return NewAuditService(school, absences, slots, cache, nil, nil, nil, AuditServiceConfig{
		CheckLevel: constraint.LevelNormal,
		CacheTTL:   time.Minute,
	})
}

func TestBuildSchool(t *testing.T) {
	svc := newStubService(t, nil)
	school, err := svc.BuildSchool(context.Background(), "term-1")
	require.NoError(t, err)

	assert.Len(t, school.Classes(), 4)
	assert.True(t, school.IsCore("math"))
	assert.True(t, school.IsProtected("homeroom"))
	assert.True(t, school.IsIndependentActivity("self_study"))
	assert.Equal(t, 3, school.StandardHoursFor("math"))
	assert.True(t, school.IsCombinedLessonTeacher("principal"))
	assert.True(t, school.IsTestPeriod(models.TimeSlot{Day: models.Wednesday, Period: 1}))
	assert.True(t, school.Absences().IsAbsent("suzuki", models.TimeSlot{Day: models.Tuesday, Period: 3}))

	parent, ok := school.ParentOf(models.ClassRef{Grade: 2, Section: 6})
	require.True(t, ok)
	assert.Equal(t, models.ClassRef{Grade: 2, Section: 1}, parent)
}

func TestLoadSchedulePinsCells(t *testing.T) {
	svc := newStubService(t, nil)
	ctx := context.Background()
	school, err := svc.BuildSchool(ctx, "term-1")
	require.NoError(t, err)
	sched, err := svc.LoadSchedule(ctx, "draft-1", school)
	require.NoError(t, err)

	assert.Equal(t, 4, sched.Len())
	// Explicitly locked and protected cells are pinned.
	assert.True(t, sched.IsLocked(models.TimeSlot{Day: models.Monday, Period: 2}, models.ClassRef{Grade: 1, Section: 1}))
	// Test-period cells are pinned for every class.
	assert.True(t, sched.IsLocked(models.TimeSlot{Day: models.Wednesday, Period: 1}, models.ClassRef{Grade: 2, Section: 6}))
	assert.False(t, sched.IsLocked(models.TimeSlot{Day: models.Monday, Period: 1}, models.ClassRef{Grade: 1, Section: 1}))
}

func TestAuditFindsViolations(t *testing.T) {
	cache := &memoryCache{}
	svc := newStubService(t, cache)

	report, err := svc.Audit(context.Background(), dto.AuditRequest{TermID: "term-1", ScheduleID: "draft-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ReportID)
	assert.False(t, report.Valid)
	// Teacher double-booking plus the absence collision.
	assert.Equal(t, 2, report.ErrorCount)
	assert.Equal(t, "normal", report.CheckLevel)
	assert.Equal(t, 1, cache.sets)
}

func TestAuditServedFromCacheUnlessRefresh(t *testing.T) {
	cache := &memoryCache{}
	svc := newStubService(t, cache)
	ctx := context.Background()

	first, err := svc.Audit(ctx, dto.AuditRequest{TermID: "term-1", ScheduleID: "draft-1"})
	require.NoError(t, err)

	second, err := svc.Audit(ctx, dto.AuditRequest{TermID: "term-1", ScheduleID: "draft-1"})
	require.NoError(t, err)
	assert.Equal(t, first.ReportID, second.ReportID)
	assert.Equal(t, 1, cache.sets)

	third, err := svc.Audit(ctx, dto.AuditRequest{TermID: "term-1", ScheduleID: "draft-1", Refresh: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.ReportID, third.ReportID)
	assert.Equal(t, 2, cache.sets)
}

func TestAuditValidatesRequest(t *testing.T) {
	svc := newStubService(t, nil)
	_, err := svc.Audit(context.Background(), dto.AuditRequest{TermID: "term-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCheckPlacement(t *testing.T) {
	svc := newStubService(t, nil)
	ctx := context.Background()

	// tanaka already teaches 1-1 at Monday period 1.
	decision, err := svc.CheckPlacement(ctx, dto.PlacementRequest{
		TermID: "term-1", ScheduleID: "draft-1",
		Day: 1, Period: 1, Grade: 2, Section: 1,
		SubjectCode: "math", TeacherName: "tanaka",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "teacher_conflict")

	// A free slot with a free teacher.
	decision, err = svc.CheckPlacement(ctx, dto.PlacementRequest{
		TermID: "term-1", ScheduleID: "draft-1",
		Day: 1, Period: 3, Grade: 2, Section: 1,
		SubjectCode: "english", TeacherName: "suzuki",
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)

	// The absence fast path answers without the full rule set.
	decision, err = svc.CheckPlacement(ctx, dto.PlacementRequest{
		TermID: "term-1", ScheduleID: "draft-1",
		Day: 2, Period: 3, Grade: 1, Section: 1,
		SubjectCode: "english", TeacherName: "suzuki",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "teacher_absence")
}

func TestReportExportShapes(t *testing.T) {
	cache := &memoryCache{}
	svc := newStubService(t, cache)
	report, err := svc.Audit(context.Background(), dto.AuditRequest{TermID: "term-1", ScheduleID: "draft-1"})
	require.NoError(t, err)

	sections := ReportSections(report)
	require.Len(t, sections, len(report.Results))
	for _, section := range sections {
		assert.NotEmpty(t, section.Heading)
		assert.NotEmpty(t, section.Data.Headers)
	}

	flat := ReportDataset(report)
	assert.False(t, flat.Empty())
	assert.Len(t, flat.Rows, report.ErrorCount+report.WarningCount)
}
