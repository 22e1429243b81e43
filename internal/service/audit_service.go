package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yamabiko/timetable/internal/constraint"
	"github.com/yamabiko/timetable/internal/dto"
	"github.com/yamabiko/timetable/internal/models"
	checker "github.com/yamabiko/timetable/internal/validator"
	appErrors "github.com/yamabiko/timetable/pkg/errors"
	"github.com/yamabiko/timetable/pkg/export"
)

// SchoolDataSource describes the reference-data queries AuditService needs.
type SchoolDataSource interface {
	ListClasses(ctx context.Context, termID string) ([]models.ClassRecord, error)
	ListSubjects(ctx context.Context) ([]models.SubjectRecord, error)
	ListEligibility(ctx context.Context, termID string) ([]models.EligibilityRecord, error)
	ListExchangePairs(ctx context.Context, termID string) ([]models.ExchangePairRecord, error)
	ListCohorts(ctx context.Context, termID string) ([]models.CohortRecord, error)
	ListTestPeriods(ctx context.Context, termID string) ([]models.TestPeriodRecord, error)
}

// AbsenceSource describes the leave-calendar queries AuditService needs.
type AbsenceSource interface {
	ListByTerm(ctx context.Context, termID string) ([]models.AbsenceRecord, error)
}

// SlotSource describes the stored-draft queries AuditService needs.
type SlotSource interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.SlotRecord, error)
}

// ReportCache describes the audit-report cache.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AuditServiceConfig tunes audit behaviour.
type AuditServiceConfig struct {
	CheckLevel constraint.CheckLevel
	CacheTTL   time.Duration
	// LearnedRulesEnabled turns on the learned overlay derived from the
	// term's reference data.
	LearnedRulesEnabled bool
	// ExtraRules are operator-supplied learned rules applied on top.
	ExtraRules []constraint.Rule
}

// AuditService loads reference data and stored drafts, runs full constraint
// audits, and answers placement probes.
type AuditService struct {
	school   SchoolDataSource
	absences AbsenceSource
	slots    SlotSource
	cache    ReportCache
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      AuditServiceConfig
}

// NewAuditService constructs an audit service. Logger and validate fall back
// to defaults when nil; cache and metrics may be nil and degrade gracefully.
func NewAuditService(school SchoolDataSource, absences AbsenceSource, slots SlotSource, cache ReportCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AuditServiceConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuditService{
		school:   school,
		absences: absences,
		slots:    slots,
		cache:    cache,
		metrics:  metrics,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
	}
}

// BuildSchool folds the term's reference data into an in-memory School.
func (s *AuditService) BuildSchool(ctx context.Context, termID string) (*models.School, error) {
	start := time.Now()
	classes, err := s.school.ListClasses(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	subjects, err := s.school.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	eligibility, err := s.school.ListEligibility(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	pairs, err := s.school.ListExchangePairs(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	cohorts, err := s.school.ListCohorts(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	testPeriods, err := s.school.ListTestPeriods(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	absences, err := s.absences.ListByTerm(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("build school: %w", err)
	}
	s.metrics.ObserveDBQuery("build_school", time.Since(start))

	cfg := models.SchoolConfig{
		ExchangePairs: make(map[models.ClassRef]models.ClassRef, len(pairs)),
		StandardHours: make(map[models.Subject]int),
		Absences:      models.NewAbsenceCalendar(),
	}

	for _, c := range classes {
		cfg.Classes = append(cfg.Classes, c.Ref())
	}
	for _, sub := range subjects {
		code := models.Subject(sub.Code)
		cfg.Subjects = append(cfg.Subjects, code)
		if sub.Protected {
			cfg.ProtectedSubjects = append(cfg.ProtectedSubjects, code)
		}
		if sub.Core {
			cfg.CoreSubjects = append(cfg.CoreSubjects, code)
		}
		if sub.Independent {
			cfg.IndependentSubjects = append(cfg.IndependentSubjects, code)
		}
		if sub.StandardHours > 0 {
			cfg.StandardHours[code] = sub.StandardHours
		}
	}
	seenCombined := make(map[string]struct{})
	for _, e := range eligibility {
		cfg.Eligibility = append(cfg.Eligibility, models.TeacherEligibility{
			Teacher: models.Teacher{Name: e.TeacherName},
			Subject: models.Subject(e.SubjectCode),
			Class:   models.ClassRef{Grade: e.Grade, Section: e.Section},
		})
		if e.Combined {
			if _, ok := seenCombined[e.TeacherName]; !ok {
				seenCombined[e.TeacherName] = struct{}{}
				cfg.CombinedTeachers = append(cfg.CombinedTeachers, e.TeacherName)
			}
		}
	}
	for _, p := range pairs {
		exchange := models.ClassRef{Grade: p.ExchangeGrade, Section: p.ExchangeSection}
		parent := models.ClassRef{Grade: p.ParentGrade, Section: p.ParentSection}
		cfg.ExchangePairs[exchange] = parent
	}
	byGroup := make(map[string][]models.ClassRef)
	var groupOrder []string
	for _, c := range cohorts {
		if _, ok := byGroup[c.GroupName]; !ok {
			groupOrder = append(groupOrder, c.GroupName)
		}
		byGroup[c.GroupName] = append(byGroup[c.GroupName], models.ClassRef{Grade: c.Grade, Section: c.Section})
	}
	for _, name := range groupOrder {
		cfg.JointCohorts = append(cfg.JointCohorts, byGroup[name])
	}
	for _, tp := range testPeriods {
		day, err := models.ParseDay(tp.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("build school: test period: %w", err)
		}
		cfg.TestPeriods = append(cfg.TestPeriods, models.TimeSlot{Day: day, Period: tp.Period})
	}
	for _, a := range absences {
		day, err := models.ParseDay(a.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("build school: absence: %w", err)
		}
		if a.Period == nil {
			cfg.Absences.MarkAbsentAllDay(a.TeacherName, day)
			continue
		}
		cfg.Absences.MarkAbsent(a.TeacherName, models.TimeSlot{Day: day, Period: *a.Period})
	}

	return models.NewSchool(cfg), nil
}

// LoadSchedule materialises a stored draft into a grid. Cells flagged locked
// in storage, cells holding protected subjects, and every cell inside a test
// period come back pinned.
func (s *AuditService) LoadSchedule(ctx context.Context, scheduleID string, school *models.School) (*models.Schedule, error) {
	records, err := s.slots.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	sched := models.NewSchedule()
	type pin struct {
		slot  models.TimeSlot
		class models.ClassRef
	}
	var pins []pin
	for _, rec := range records {
		day, err := models.ParseDay(rec.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("load schedule: %w", err)
		}
		slot := models.TimeSlot{Day: day, Period: rec.Period}
		a := models.Assignment{
			Class:   models.ClassRef{Grade: rec.Grade, Section: rec.Section},
			Subject: models.Subject(rec.SubjectCode),
		}
		if rec.TeacherName != nil {
			a.Teacher = models.Teacher{Name: *rec.TeacherName}
		}
		if err := sched.Assign(slot, a); err != nil {
			return nil, fmt.Errorf("load schedule: %w", err)
		}
		if rec.Locked || school.IsProtected(a.Subject) {
			pins = append(pins, pin{slot: slot, class: a.Class})
		}
	}
	// Locks go on after all placements so loading order cannot trip the
	// guard.
	for _, p := range pins {
		sched.Lock(p.slot, p.class)
	}
	for _, slot := range school.TestPeriods() {
		for _, class := range school.Classes() {
			sched.Lock(slot, class)
		}
	}
	return sched, nil
}

// learnedRules assembles the overlay: pairing rules derived from the term's
// exchange pairs when enabled, plus any operator-supplied extras.
func (s *AuditService) learnedRules(school *models.School) []constraint.Rule {
	rules := append([]constraint.Rule(nil), s.cfg.ExtraRules...)
	if !s.cfg.LearnedRulesEnabled {
		return rules
	}
	allowed := school.AllowedParentSubjects()
	for _, pair := range school.ExchangePairs() {
		rules = append(rules, constraint.ParentSubjectRule(pair.Exchange, allowed))
	}
	return rules
}

func auditCacheKey(termID, scheduleID string) string {
	return fmt.Sprintf("audit:%s:%s", termID, scheduleID)
}

// Audit runs a full constraint audit of the stored draft. Reports are served
// from the cache unless the request asks for a refresh.
func (s *AuditService) Audit(ctx context.Context, req dto.AuditRequest) (*dto.AuditReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audit request")
	}

	key := auditCacheKey(req.TermID, req.ScheduleID)
	if s.cache != nil && !req.Refresh {
		var cached dto.AuditReport
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.logger.Debug("audit report served from cache", zap.String("key", key))
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("audit cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	school, err := s.BuildSchool(ctx, req.TermID)
	if err != nil {
		return nil, err
	}
	sched, err := s.LoadSchedule(ctx, req.ScheduleID, school)
	if err != nil {
		return nil, err
	}

	set := constraint.DefaultSet(school.Absences(), s.cfg.CheckLevel)
	engine := checker.New(set, s.learnedRules(school), s.logger)

	start := time.Now()
	result := engine.ValidateSchedule(sched, school)
	elapsed := time.Since(start)

	byConstraint := make(map[string]int, len(result.Results))
	for _, r := range result.Results {
		byConstraint[r.ConstraintName] = len(r.Violations)
	}
	s.metrics.ObserveAudit(elapsed, byConstraint)

	report := &dto.AuditReport{
		ReportID:     uuid.NewString(),
		TermID:       req.TermID,
		ScheduleID:   req.ScheduleID,
		GeneratedAt:  time.Now().UTC(),
		CheckLevel:   s.cfg.CheckLevel.String(),
		Results:      result.Results,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Valid:        result.Valid(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("audit cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("audit completed",
		zap.String("report_id", report.ReportID),
		zap.String("schedule_id", req.ScheduleID),
		zap.Int("errors", report.ErrorCount),
		zap.Int("warnings", report.WarningCount),
		zap.Duration("elapsed", elapsed))

	return report, nil
}

// CheckPlacement answers a single placement probe against the stored draft,
// using the cached validator for the fast paths.
func (s *AuditService) CheckPlacement(ctx context.Context, req dto.PlacementRequest) (*dto.PlacementDecision, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement request")
	}

	school, err := s.BuildSchool(ctx, req.TermID)
	if err != nil {
		return nil, err
	}
	sched, err := s.LoadSchedule(ctx, req.ScheduleID, school)
	if err != nil {
		return nil, err
	}

	availability := checker.NewTeacherAvailabilityCache(school.Absences())
	set := constraint.DefaultSet(availability, s.cfg.CheckLevel)
	engine := checker.NewCached(checker.New(set, s.learnedRules(school), s.logger), availability, s.cfg.CheckLevel, s.logger)
	engine.Bind(sched)

	slot := models.TimeSlot{Day: models.Day(req.Day), Period: req.Period}
	a := models.Assignment{
		Class:   models.ClassRef{Grade: req.Grade, Section: req.Section},
		Subject: models.Subject(req.SubjectCode),
		Teacher: models.Teacher{Name: req.TeacherName},
	}

	ok, reason := engine.CheckBeforeAssignment(sched, school, slot, a)
	rejectedBy := ""
	if !ok {
		rejectedBy = constraintLabel(reason)
	}
	s.metrics.ObserveCheck(rejectedBy)
	s.metrics.SetCacheHitRatio(engine.Stats().HitRate())

	return &dto.PlacementDecision{Allowed: ok, Reason: reason}, nil
}

// constraintLabel extracts the "name:" prefix a rejection reason carries.
func constraintLabel(reason string) string {
	if i := strings.IndexByte(reason, ':'); i > 0 {
		return reason[:i]
	}
	return "structural"
}

// ReportSections lays an audit report out for the tabular exporters, one
// section per constraint.
func ReportSections(report *dto.AuditReport) []export.Section {
	sections := make([]export.Section, 0, len(report.Results))
	headers := []string{"Severity", "Slot", "Class", "Subject", "Description"}
	for _, result := range report.Results {
		data := export.Dataset{Headers: headers}
		for _, v := range result.Violations {
			data.Rows = append(data.Rows, map[string]string{
				"Severity":    string(v.Severity),
				"Slot":        v.Slot.String(),
				"Class":       v.Assignment.Class.String(),
				"Subject":     v.Assignment.Subject.String(),
				"Description": v.Description,
			})
		}
		heading := fmt.Sprintf("%s: %s", result.ConstraintName, result.Message)
		sections = append(sections, export.Section{Heading: heading, Data: data})
	}
	return sections
}

// ReportDataset flattens an audit report into one table for CSV export.
func ReportDataset(report *dto.AuditReport) export.Dataset {
	data := export.Dataset{Headers: []string{"Constraint", "Severity", "Slot", "Class", "Subject", "Description"}}
	for _, result := range report.Results {
		for _, v := range result.Violations {
			data.Rows = append(data.Rows, map[string]string{
				"Constraint":  result.ConstraintName,
				"Severity":    string(v.Severity),
				"Slot":        v.Slot.String(),
				"Class":       v.Assignment.Class.String(),
				"Subject":     v.Assignment.Subject.String(),
				"Description": v.Description,
			})
		}
	}
	return data
}
