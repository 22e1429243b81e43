package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yamabiko/timetable/internal/models"
)

// AbsenceRepository loads teacher leave entries.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository creates a new repository instance.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// ListByTerm returns every absence entry for the term. A NULL period marks a
// whole-day absence.
func (r *AbsenceRepository) ListByTerm(ctx context.Context, termID string) ([]models.AbsenceRecord, error) {
	const query = `SELECT id, teacher_name, day_of_week, period, detail FROM teacher_absences WHERE term_id = $1 ORDER BY teacher_name, day_of_week, period NULLS FIRST`
	var absences []models.AbsenceRecord
	if err := r.db.SelectContext(ctx, &absences, query, termID); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return absences, nil
}
