package models

// Severity grades a constraint violation.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// ConstraintViolation is one standing rule violation found by a full-schedule
// audit. Violations are data: they are collected and returned, never raised.
// Description is self-contained and requires no further context to display.
type ConstraintViolation struct {
	Description string     `json:"description"`
	Slot        TimeSlot   `json:"slot"`
	Assignment  Assignment `json:"assignment"`
	Severity    Severity   `json:"severity"`
}

// ConstraintResult is the outcome of one constraint's full-schedule audit.
type ConstraintResult struct {
	ConstraintName string                `json:"constraint_name"`
	Violations     []ConstraintViolation `json:"violations"`
	Message        string                `json:"message"`
}

// IsValid reports whether the audit found no violations.
func (r ConstraintResult) IsValid() bool { return len(r.Violations) == 0 }

// HasErrors reports whether any violation is of ERROR severity.
func (r ConstraintResult) HasErrors() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any violation is of WARNING severity.
func (r ConstraintResult) HasWarnings() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityWarning {
			return true
		}
	}
	return false
}
