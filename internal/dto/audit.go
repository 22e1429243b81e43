package dto

import (
	"time"

	"github.com/yamabiko/timetable/internal/models"
)

// AuditRequest selects a stored schedule draft for a full constraint audit.
type AuditRequest struct {
	TermID     string `json:"term_id" validate:"required"`
	ScheduleID string `json:"schedule_id" validate:"required"`
	Refresh    bool   `json:"refresh"`
}

// AuditReport is the persisted outcome of one full audit.
type AuditReport struct {
	ReportID     string                    `json:"report_id"`
	TermID       string                    `json:"term_id"`
	ScheduleID   string                    `json:"schedule_id"`
	GeneratedAt  time.Time                 `json:"generated_at"`
	CheckLevel   string                    `json:"check_level"`
	Results      []models.ConstraintResult `json:"results"`
	ErrorCount   int                       `json:"error_count"`
	WarningCount int                       `json:"warning_count"`
	Valid        bool                      `json:"valid"`
}

// PlacementRequest asks whether one assignment may be placed at one slot.
type PlacementRequest struct {
	TermID      string `json:"term_id" validate:"required"`
	ScheduleID  string `json:"schedule_id" validate:"required"`
	Day         int    `json:"day" validate:"required,min=1,max=5"`
	Period      int    `json:"period" validate:"required,min=1,max=6"`
	Grade       int    `json:"grade" validate:"required,min=1"`
	Section     int    `json:"section" validate:"required,min=1"`
	SubjectCode string `json:"subject_code" validate:"required"`
	TeacherName string `json:"teacher_name"`
}

// PlacementDecision is the answer to a placement probe.
type PlacementDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
