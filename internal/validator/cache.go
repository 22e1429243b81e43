package validator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yamabiko/timetable/internal/constraint"
	"github.com/yamabiko/timetable/internal/models"
)

// Stats counts cache traffic for one validation run.
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	TotalChecks   int64 `json:"total_checks"`
	Invalidations int64 `json:"invalidations"`
}

// HitRate returns hits over hits+misses, zero when nothing was looked up.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type availabilityKey struct {
	Teacher string
	Slot    models.TimeSlot
}

// TeacherAvailabilityCache memoizes absence lookups. The absence calendar is
// static for a generation run, so entries are never invalidated. It satisfies
// constraint.AbsenceLookup and can back the standing rule set directly.
type TeacherAvailabilityCache struct {
	source constraint.AbsenceLookup
	away   map[availabilityKey]bool
	hits   int64
	misses int64
}

// NewTeacherAvailabilityCache wraps an absence source.
func NewTeacherAvailabilityCache(source constraint.AbsenceLookup) *TeacherAvailabilityCache {
	return &TeacherAvailabilityCache{
		source: source,
		away:   make(map[availabilityKey]bool),
	}
}

func (c *TeacherAvailabilityCache) IsAbsent(teacher string, slot models.TimeSlot) bool {
	key := availabilityKey{Teacher: teacher, Slot: slot}
	if away, ok := c.away[key]; ok {
		c.hits++
		return away
	}
	c.misses++
	away := c.source.IsAbsent(teacher, slot)
	c.away[key] = away
	return away
}

func (c *TeacherAvailabilityCache) AbsentTeachers(slot models.TimeSlot) []string {
	return c.source.AbsentTeachers(slot)
}

type classDayKey struct {
	Class models.ClassRef
	Day   models.Day
}

// DailyCountCache memoizes per-class per-day subject counts. A mutation of
// any cell on (class, day) invalidates exactly that entry.
type DailyCountCache struct {
	counts        map[classDayKey]map[models.Subject]int
	hits          int64
	misses        int64
	invalidations int64
}

// NewDailyCountCache returns an empty count cache.
func NewDailyCountCache() *DailyCountCache {
	return &DailyCountCache{counts: make(map[classDayKey]map[models.Subject]int)}
}

// Counts returns the subject counts for the class on the day, computing and
// storing them on first use.
func (c *DailyCountCache) Counts(sched *models.Schedule, class models.ClassRef, day models.Day) map[models.Subject]int {
	key := classDayKey{Class: class, Day: day}
	if counts, ok := c.counts[key]; ok {
		c.hits++
		return counts
	}
	c.misses++
	counts := make(map[models.Subject]int)
	for _, subject := range sched.DailySubjects(class, day) {
		counts[subject]++
	}
	c.counts[key] = counts
	return counts
}

// InvalidateClassDay drops the entry for one (class, day).
func (c *DailyCountCache) InvalidateClassDay(class models.ClassRef, day models.Day) {
	key := classDayKey{Class: class, Day: day}
	if _, ok := c.counts[key]; ok {
		delete(c.counts, key)
		c.invalidations++
	}
}

// ResultCache holds the last full-audit report. Any mutation anywhere flushes
// it; a full audit reads every cell, so finer tracking buys nothing.
type ResultCache struct {
	report        *Report
	hits          int64
	misses        int64
	invalidations int64
}

// NewResultCache returns an empty result cache.
func NewResultCache() *ResultCache { return &ResultCache{} }

// Get returns the cached report, if one is live.
func (c *ResultCache) Get() (*Report, bool) {
	if c.report == nil {
		c.misses++
		return nil, false
	}
	c.hits++
	return c.report, true
}

// Put stores a fresh report.
func (c *ResultCache) Put(report Report) { c.report = &report }

// Flush drops the cached report.
func (c *ResultCache) Flush() {
	if c.report != nil {
		c.report = nil
		c.invalidations++
	}
}

// CachedValidator layers the three caches over a Validator: availability
// lookups are memoized forever, daily counts per (class, day), and the full
// audit report until the next mutation. Bind a schedule before use so its
// mutations drive invalidation. Not safe for concurrent use; generation is
// single-writer.
type CachedValidator struct {
	inner        *Validator
	availability *TeacherAvailabilityCache
	counts       *DailyCountCache
	results      *ResultCache
	level        constraint.CheckLevel
	logger       *zap.Logger
	totalChecks  int64
}

// NewCached wraps a validator with the caching layer. The availability cache
// must be the same one the inner validator's rule set was built over, so both
// layers share one memoized view; a nil logger falls back to a no-op logger.
func NewCached(inner *Validator, availability *TeacherAvailabilityCache, level constraint.CheckLevel, logger *zap.Logger) *CachedValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedValidator{
		inner:        inner,
		availability: availability,
		counts:       NewDailyCountCache(),
		results:      NewResultCache(),
		level:        level,
		logger:       logger,
	}
}

// Availability exposes the memoized absence lookup so the standing rule set
// can be built over it.
func (v *CachedValidator) Availability() *TeacherAvailabilityCache { return v.availability }

// Bind registers the invalidation hook on the schedule. Every mutation drops
// the touched (class, day) counts and flushes the audit report.
func (v *CachedValidator) Bind(sched *models.Schedule) {
	sched.OnMutate(func(slot models.TimeSlot, class models.ClassRef) {
		v.counts.InvalidateClassDay(class, slot.Day)
		v.results.Flush()
	})
}

// CheckBeforeAssignment runs the cached fast paths first: a memoized absence
// hit or a daily-count overflow rejects without touching the full rule set.
// Anything that survives the fast path goes through the inner validator.
func (v *CachedValidator) CheckBeforeAssignment(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	v.totalChecks++
	if teacher, ok := school.EffectiveTeacher(a); ok && v.availability.IsAbsent(teacher.Name, slot) {
		return false, fmt.Sprintf("teacher_absence: teacher %s is away at %s", teacher.Name, slot)
	}
	if !school.IsProtected(a.Subject) {
		counts := v.counts.Counts(sched, a.Class, slot.Day)
		count := counts[a.Subject] + 1
		if existing, ok := sched.Get(slot, a.Class); ok && existing.Subject == a.Subject {
			count-- // replacing a same-subject occupant
		}
		if max := constraint.MaxDailyOccurrences(school, a.Subject, v.level); count > max {
			return false, fmt.Sprintf("daily_duplicate: %s would appear %d times for %s on %s (max %d)",
				a.Subject, count, a.Class, slot.Day, max)
		}
	}
	return v.inner.CheckBeforeAssignment(sched, school, slot, a)
}

// ValidateSchedule returns the cached report when the schedule has not
// mutated since the last audit, otherwise audits and caches.
func (v *CachedValidator) ValidateSchedule(sched *models.Schedule, school *models.School) Report {
	if report, ok := v.results.Get(); ok {
		return *report
	}
	report := v.inner.ValidateSchedule(sched, school)
	v.results.Put(report)
	return report
}

// Stats aggregates traffic across the three caches.
func (v *CachedValidator) Stats() Stats {
	return Stats{
		Hits:          v.availability.hits + v.counts.hits + v.results.hits,
		Misses:        v.availability.misses + v.counts.misses + v.results.misses,
		TotalChecks:   v.totalChecks,
		Invalidations: v.counts.invalidations + v.results.invalidations,
	}
}
