package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yamabiko/timetable/internal/models"
)

// SchoolRepository loads the static reference data a validation run needs:
// rosters, subject classifications, eligibility, pairings, cohorts and test
// periods.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository creates a new repository instance.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// ListClasses returns every class of the term, grade then section order.
func (r *SchoolRepository) ListClasses(ctx context.Context, termID string) ([]models.ClassRecord, error) {
	const query = `SELECT id, grade, section FROM classes WHERE term_id = $1 ORDER BY grade, section`
	var classes []models.ClassRecord
	if err := r.db.SelectContext(ctx, &classes, query, termID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListSubjects returns the subject catalogue with its classification flags.
func (r *SchoolRepository) ListSubjects(ctx context.Context) ([]models.SubjectRecord, error) {
	const query = `SELECT id, code, name, is_protected, is_core, is_independent, standard_hours FROM subjects ORDER BY code`
	var subjects []models.SubjectRecord
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListEligibility returns which teacher teaches which subject to which class.
func (r *SchoolRepository) ListEligibility(ctx context.Context, termID string) ([]models.EligibilityRecord, error) {
	const query = `SELECT id, teacher_name, subject_code, grade, section, is_combined FROM teacher_eligibility WHERE term_id = $1 ORDER BY teacher_name, subject_code, grade, section`
	var entries []models.EligibilityRecord
	if err := r.db.SelectContext(ctx, &entries, query, termID); err != nil {
		return nil, fmt.Errorf("list eligibility: %w", err)
	}
	return entries, nil
}

// ListExchangePairs returns the exchange-to-parent class pairings.
func (r *SchoolRepository) ListExchangePairs(ctx context.Context, termID string) ([]models.ExchangePairRecord, error) {
	const query = `SELECT id, exchange_grade, exchange_section, parent_grade, parent_section FROM exchange_pairs WHERE term_id = $1 ORDER BY exchange_grade, exchange_section`
	var pairs []models.ExchangePairRecord
	if err := r.db.SelectContext(ctx, &pairs, query, termID); err != nil {
		return nil, fmt.Errorf("list exchange pairs: %w", err)
	}
	return pairs, nil
}

// ListCohorts returns joint cohort memberships grouped by cohort name.
func (r *SchoolRepository) ListCohorts(ctx context.Context, termID string) ([]models.CohortRecord, error) {
	const query = `SELECT id, group_name, grade, section FROM joint_cohorts WHERE term_id = $1 ORDER BY group_name, grade, section`
	var cohorts []models.CohortRecord
	if err := r.db.SelectContext(ctx, &cohorts, query, termID); err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	return cohorts, nil
}

// ListTestPeriods returns the locked test-period slots of the term.
func (r *SchoolRepository) ListTestPeriods(ctx context.Context, termID string) ([]models.TestPeriodRecord, error) {
	const query = `SELECT id, day_of_week, period FROM test_periods WHERE term_id = $1 ORDER BY day_of_week, period`
	var periods []models.TestPeriodRecord
	if err := r.db.SelectContext(ctx, &periods, query, termID); err != nil {
		return nil, fmt.Errorf("list test periods: %w", err)
	}
	return periods, nil
}
