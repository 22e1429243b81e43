package constraint

import (
	"sort"

	"github.com/yamabiko/timetable/internal/models"
)

// Type separates rules that block placement from rules that only grade it.
type Type string

const (
	// TypeHard rules refuse a placement outright.
	TypeHard Type = "HARD"
	// TypeSoft rules are preferences; breaking one costs quality, not
	// validity.
	TypeSoft Type = "SOFT"
)

// Priority orders constraint evaluation. Higher runs first.
type Priority int

const (
	PriorityCritical   Priority = 100
	PriorityHigh       Priority = 80
	PriorityMedium     Priority = 60
	PriorityLow        Priority = 40
	PrioritySuggestion Priority = 20
)

// AbsenceLookup answers teacher-away questions. Satisfied by
// models.AbsenceCalendar and by the availability cache.
type AbsenceLookup interface {
	IsAbsent(teacher string, slot models.TimeSlot) bool
	AbsentTeachers(slot models.TimeSlot) []string
}

// Constraint is one standing timetable rule. Check is the fast pre-placement
// probe: would placing the candidate assignment at the slot break this rule?
// It must not mutate the schedule. Validate is the full-schedule audit,
// returning every violation found.
//
// The two modes disagree on the target cell on purpose: Check evaluates the
// schedule as if the candidate were placed (the cell's current occupant, if
// any, is ignored), while Validate judges the grid exactly as it stands.
type Constraint interface {
	Name() string
	Description() string
	Type() Type
	Priority() Priority
	Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string)
	Validate(sched *models.Schedule, school *models.School) models.ConstraintResult
}

// meta carries the identity fields every constraint embeds.
type meta struct {
	name        string
	description string
	ctype       Type
	priority    Priority
}

func (m meta) Name() string        { return m.name }
func (m meta) Description() string { return m.description }
func (m meta) Type() Type          { return m.ctype }
func (m meta) Priority() Priority  { return m.priority }

// Set is an ordered collection of constraints: priority descending, name
// ascending within a priority.
type Set struct {
	constraints []Constraint
}

// NewSet builds a set from the given constraints.
func NewSet(constraints ...Constraint) *Set {
	s := &Set{}
	for _, c := range constraints {
		s.Add(c)
	}
	return s
}

// Add inserts a constraint, keeping evaluation order.
func (s *Set) Add(c Constraint) {
	if c == nil {
		return
	}
	s.constraints = append(s.constraints, c)
	sort.SliceStable(s.constraints, func(i, j int) bool {
		a, b := s.constraints[i], s.constraints[j]
		if a.Priority() != b.Priority() {
			return a.Priority() > b.Priority()
		}
		return a.Name() < b.Name()
	})
}

// Remove drops the named constraint. Unknown names are ignored.
func (s *Set) Remove(name string) {
	for i, c := range s.constraints {
		if c.Name() == name {
			s.constraints = append(s.constraints[:i], s.constraints[i+1:]...)
			return
		}
	}
}

// All returns the constraints in evaluation order.
func (s *Set) All() []Constraint {
	return append([]Constraint(nil), s.constraints...)
}

// Hard returns only the blocking constraints, in evaluation order.
func (s *Set) Hard() []Constraint {
	var out []Constraint
	for _, c := range s.constraints {
		if c.Type() == TypeHard {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of constraints in the set.
func (s *Set) Len() int { return len(s.constraints) }

// CheckLevel tunes how strictly the daily-duplication rule is applied.
type CheckLevel int

const (
	// LevelStrict allows one occurrence of any subject per class per day.
	LevelStrict CheckLevel = iota + 1
	// LevelNormal allows a second daily occurrence for core subjects.
	LevelNormal
	// LevelRelaxed allows up to three daily occurrences for core subjects.
	LevelRelaxed
)

// ParseCheckLevel maps a configuration string to a level. Anything
// unrecognised falls back to strict, so a misconfigured run never under-checks.
func ParseCheckLevel(s string) CheckLevel {
	switch s {
	case "normal":
		return LevelNormal
	case "relaxed":
		return LevelRelaxed
	default:
		return LevelStrict
	}
}

func (l CheckLevel) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelRelaxed:
		return "relaxed"
	default:
		return "strict"
	}
}

// MaxDailyOccurrences returns how many times a subject may appear for one
// class on one day under the given level. Protected subjects are uncapped.
func MaxDailyOccurrences(school *models.School, subject models.Subject, level CheckLevel) int {
	if school.IsProtected(subject) {
		return models.MaxPeriod
	}
	switch level {
	case LevelNormal:
		if school.IsCore(subject) {
			return 2
		}
		return 1
	case LevelRelaxed:
		if school.IsCore(subject) {
			return 3
		}
		return 1
	default:
		return 1
	}
}

// DefaultSet assembles the standing rule set: every built-in constraint at
// its designed priority.
func DefaultSet(absences AbsenceLookup, level CheckLevel) *Set {
	return NewSet(
		NewDailyDuplicate(level),
		NewTeacherAbsence(absences),
		NewTeacherConflict(),
		NewGymUsage(),
		NewFixedSubject(),
		NewExchangeSync(),
		NewCohortSync(),
		NewStandardHours(),
	)
}
