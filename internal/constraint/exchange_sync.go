package constraint

import (
	"fmt"

	"github.com/yamabiko/timetable/internal/models"
)

// ExchangeSync keeps an exchange class aligned with its parent class slot by
// slot. A regular lesson on the exchange side must mirror the parent's
// subject; an independent activity on the exchange side requires the parent
// to run one of the allowed parent subjects. When the counterpart cell is
// still empty the point check defers and passes; only the full audit reports
// the hole.
type ExchangeSync struct {
	meta
}

// NewExchangeSync builds the rule.
func NewExchangeSync() *ExchangeSync {
	return &ExchangeSync{
		meta: meta{
			name:        "exchange_sync",
			description: "an exchange class must stay in step with its parent class",
			ctype:       TypeHard,
			priority:    PriorityHigh,
		},
	}
}

// pairOK judges an exchange-side subject against the parent-side subject.
func (c *ExchangeSync) pairOK(school *models.School, exchange, parent models.Subject) (bool, string) {
	if school.IsIndependentActivity(exchange) {
		if school.IsAllowedParentSubject(parent) {
			return true, ""
		}
		return false, fmt.Sprintf("independent activity %s needs the parent class in one of %v, not %s",
			exchange, school.AllowedParentSubjects(), parent)
	}
	if exchange != parent {
		return false, fmt.Sprintf("exchange class runs %s while the parent class runs %s", exchange, parent)
	}
	return true, ""
}

func (c *ExchangeSync) Check(sched *models.Schedule, school *models.School, slot models.TimeSlot, a models.Assignment) (bool, string) {
	if school.IsProtected(a.Subject) {
		return true, ""
	}
	if parentClass, ok := school.ParentOf(a.Class); ok {
		parent, placed := sched.Get(slot, parentClass)
		if !placed {
			return true, ""
		}
		return c.pairOK(school, a.Subject, parent.Subject)
	}
	if exchangeClass, ok := school.ExchangeOf(a.Class); ok {
		exchange, placed := sched.Get(slot, exchangeClass)
		if !placed || school.IsProtected(exchange.Subject) {
			return true, ""
		}
		return c.pairOK(school, exchange.Subject, a.Subject)
	}
	return true, ""
}

func (c *ExchangeSync) Validate(sched *models.Schedule, school *models.School) models.ConstraintResult {
	result := models.ConstraintResult{ConstraintName: c.Name()}
	for _, pair := range school.ExchangePairs() {
		for _, slot := range models.WeekSlots() {
			exchange, ok := sched.Get(slot, pair.Exchange)
			if !ok || school.IsProtected(exchange.Subject) {
				continue
			}
			parent, ok := sched.Get(slot, pair.Parent)
			if !ok {
				result.Violations = append(result.Violations, models.ConstraintViolation{
					Description: fmt.Sprintf("exchange class %s has %s at %s but parent class %s has nothing scheduled",
						pair.Exchange, exchange.Subject, slot, pair.Parent),
					Slot:       slot,
					Assignment: exchange,
					Severity:   models.SeverityError,
				})
				continue
			}
			if ok, reason := c.pairOK(school, exchange.Subject, parent.Subject); !ok {
				result.Violations = append(result.Violations, models.ConstraintViolation{
					Description: fmt.Sprintf("%s and %s out of step at %s: %s",
						pair.Exchange, pair.Parent, slot, reason),
					Slot:       slot,
					Assignment: exchange,
					Severity:   models.SeverityError,
				})
			}
		}
	}
	if result.IsValid() {
		result.Message = "exchange classes in step with their parents"
	} else {
		result.Message = fmt.Sprintf("%d exchange pairing violations", len(result.Violations))
	}
	return result
}
