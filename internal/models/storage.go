package models

import "github.com/jmoiron/sqlx/types"

// Row types mapped from the reference-data store. Repositories return these
// raw; the audit service folds them into a SchoolConfig and a Schedule.

type ClassRecord struct {
	ID      int64 `db:"id" json:"id"`
	Grade   int   `db:"grade" json:"grade"`
	Section int   `db:"section" json:"section"`
}

// Ref converts the row to its in-memory class reference.
func (r ClassRecord) Ref() ClassRef {
	return ClassRef{Grade: r.Grade, Section: r.Section}
}

type SubjectRecord struct {
	ID            int64  `db:"id" json:"id"`
	Code          string `db:"code" json:"code"`
	Name          string `db:"name" json:"name"`
	Protected     bool   `db:"is_protected" json:"is_protected"`
	Core          bool   `db:"is_core" json:"is_core"`
	Independent   bool   `db:"is_independent" json:"is_independent"`
	StandardHours int    `db:"standard_hours" json:"standard_hours"`
}

type EligibilityRecord struct {
	ID          int64  `db:"id" json:"id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	Grade       int    `db:"grade" json:"grade"`
	Section     int    `db:"section" json:"section"`
	Combined    bool   `db:"is_combined" json:"is_combined"`
}

// AbsenceRecord is one leave entry. A NULL period marks a whole-day absence.
type AbsenceRecord struct {
	ID          int64          `db:"id" json:"id"`
	TeacherName string         `db:"teacher_name" json:"teacher_name"`
	DayOfWeek   string         `db:"day_of_week" json:"day_of_week"`
	Period      *int           `db:"period" json:"period,omitempty"`
	Detail      types.JSONText `db:"detail" json:"detail,omitempty"`
}

type ExchangePairRecord struct {
	ID              int64 `db:"id" json:"id"`
	ExchangeGrade   int   `db:"exchange_grade" json:"exchange_grade"`
	ExchangeSection int   `db:"exchange_section" json:"exchange_section"`
	ParentGrade     int   `db:"parent_grade" json:"parent_grade"`
	ParentSection   int   `db:"parent_section" json:"parent_section"`
}

type CohortRecord struct {
	ID        int64  `db:"id" json:"id"`
	GroupName string `db:"group_name" json:"group_name"`
	Grade     int    `db:"grade" json:"grade"`
	Section   int    `db:"section" json:"section"`
}

type TestPeriodRecord struct {
	ID        int64  `db:"id" json:"id"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	Period    int    `db:"period" json:"period"`
}

// SlotRecord is one persisted grid cell of a stored schedule draft.
type SlotRecord struct {
	ID          int64   `db:"id" json:"id"`
	ScheduleID  string  `db:"schedule_id" json:"schedule_id"`
	Grade       int     `db:"grade" json:"grade"`
	Section     int     `db:"section" json:"section"`
	DayOfWeek   string  `db:"day_of_week" json:"day_of_week"`
	Period      int     `db:"period" json:"period"`
	SubjectCode string  `db:"subject_code" json:"subject_code"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
	Locked      bool    `db:"locked" json:"locked"`
}
