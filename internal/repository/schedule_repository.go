package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yamabiko/timetable/internal/models"
)

// ScheduleRepository loads stored schedule drafts cell by cell.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new repository instance.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListBySchedule returns every placed cell of the draft in grid order.
func (r *ScheduleRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.SlotRecord, error) {
	const query = `SELECT id, schedule_id, grade, section, day_of_week, period, subject_code, teacher_name, locked FROM schedule_slots WHERE schedule_id = $1 ORDER BY day_of_week, period, grade, section`
	var slots []models.SlotRecord
	if err := r.db.SelectContext(ctx, &slots, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}
