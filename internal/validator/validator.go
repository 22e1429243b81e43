package validator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yamabiko/timetable/internal/constraint"
	"github.com/yamabiko/timetable/internal/models"
)

// Report is the outcome of a full-schedule audit: one result per constraint
// in evaluation order.
type Report struct {
	Results []models.ConstraintResult `json:"results"`
}

// TotalViolations counts every violation across all constraints.
func (r Report) TotalViolations() int {
	n := 0
	for _, result := range r.Results {
		n += len(result.Violations)
	}
	return n
}

// ErrorCount counts ERROR-severity violations.
func (r Report) ErrorCount() int {
	n := 0
	for _, result := range r.Results {
		for _, v := range result.Violations {
			if v.Severity == models.SeverityError {
				n++
			}
		}
	}
	return n
}

// WarningCount counts WARNING-severity violations.
func (r Report) WarningCount() int {
	return r.TotalViolations() - r.ErrorCount()
}

// Valid reports whether the audit found no hard failures.
func (r Report) Valid() bool { return r.ErrorCount() == 0 }

// Validator evaluates the standing constraint set and the learned rule
// overlay against a schedule. It holds no schedule state of its own; the same
// instance serves any number of schedules.
type Validator struct {
	set    *constraint.Set
	rules  []constraint.Rule
	logger *zap.Logger
}

// New builds a validator over the given set and learned rules. A nil logger
// falls back to a no-op logger.
func New(set *constraint.Set, rules []constraint.Rule, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{set: set, rules: rules, logger: logger}
}

// AddRule appends a learned rule to the overlay.
func (v *Validator) AddRule(rule constraint.Rule) {
	v.rules = append(v.rules, rule)
}

// Constraints returns the standing set, for callers that tune it.
func (v *Validator) Constraints() *constraint.Set { return v.set }

// CheckBeforeAssignment probes whether the candidate may be placed at the
// slot. Structural refusals (locked cell, protected occupant) come first,
// then the learned rule overlay, then every hard constraint in priority
// order. An unprotected occupant does not refuse by itself: the candidate is
// judged as its replacement, and every constraint ignores the occupant when
// counting. Soft constraints never block; a failing one is logged and the
// placement proceeds.
func (v *Validator) CheckBeforeAssignment(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	if !slot.Valid() {
		return false, fmt.Sprintf("slot %s is outside the school week", slot)
	}
	if sched.IsLocked(slot, a.Class) {
		return false, fmt.Sprintf("cell at %s for %s is locked", slot, a.Class)
	}
	if existing, ok := sched.Get(slot, a.Class); ok && school.IsProtected(existing.Subject) {
		return false, fmt.Sprintf("cell at %s for %s holds protected %s", slot, a.Class, existing.Subject)
	}
	for _, rule := range v.rules {
		if rule.Rejects(sched, school, slot, a) {
			return false, fmt.Sprintf("%s: %s", rule.Name, rule.RejectMessage)
		}
	}
	for _, c := range v.set.All() {
		ok, reason := c.Check(sched, school, slot, a)
		if ok {
			continue
		}
		if c.Type() == constraint.TypeSoft {
			v.logger.Debug("soft constraint objection",
				zap.String("constraint", c.Name()),
				zap.String("slot", slot.String()),
				zap.String("reason", reason))
			continue
		}
		return false, fmt.Sprintf("%s: %s", c.Name(), reason)
	}
	return true, ""
}

// ValidateSchedule audits the whole grid against every constraint. The
// report order is the set's evaluation order, so repeated audits of an
// unchanged schedule produce identical reports.
func (v *Validator) ValidateSchedule(sched *models.Schedule, school *models.School) Report {
	report := Report{Results: make([]models.ConstraintResult, 0, v.set.Len())}
	for _, c := range v.set.All() {
		result := c.Validate(sched, school)
		report.Results = append(report.Results, result)
		if !result.IsValid() {
			v.logger.Debug("constraint violations found",
				zap.String("constraint", c.Name()),
				zap.Int("violations", len(result.Violations)))
		}
	}
	return report
}
