package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSchoolRepositoryListClasses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	rows := sqlmock.NewRows([]string{"id", "grade", "section"}).
		AddRow(1, 1, 1).
		AddRow(2, 1, 5).
		AddRow(3, 2, 6)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, grade, section FROM classes WHERE term_id = $1 ORDER BY grade, section")).
		WithArgs("term-1").
		WillReturnRows(rows)

	classes, err := repo.ListClasses(context.Background(), "term-1")
	require.NoError(t, err)
	assert.Len(t, classes, 3)
	assert.Equal(t, 1, classes[0].Grade)
	assert.Equal(t, 5, classes[1].Section)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryListSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "is_protected", "is_core", "is_independent", "standard_hours"}).
		AddRow(1, "math", "Mathematics", false, true, false, 3).
		AddRow(2, "homeroom", "Homeroom", true, false, false, 1).
		AddRow(3, "self_study", "Independent Study", false, false, true, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, is_protected, is_core, is_independent, standard_hours FROM subjects ORDER BY code")).
		WillReturnRows(rows)

	subjects, err := repo.ListSubjects(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.True(t, subjects[0].Core)
	assert.True(t, subjects[1].Protected)
	assert.True(t, subjects[2].Independent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryListEligibility(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_name", "subject_code", "grade", "section", "is_combined"}).
		AddRow(1, "tanaka", "math", 1, 1, false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_name, subject_code, grade, section, is_combined FROM teacher_eligibility WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(rows)

	entries, err := repo.ListEligibility(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tanaka", entries[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryListExchangePairsAndCohorts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, exchange_grade, exchange_section, parent_grade, parent_section FROM exchange_pairs WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "exchange_grade", "exchange_section", "parent_grade", "parent_section"}).
			AddRow(1, 2, 6, 2, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, group_name, grade, section FROM joint_cohorts WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_name", "grade", "section"}).
			AddRow(1, "fives", 1, 5).
			AddRow(2, "fives", 2, 5))

	pairs, err := repo.ListExchangePairs(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 6, pairs[0].ExchangeSection)

	cohorts, err := repo.ListCohorts(context.Background(), "term-1")
	require.NoError(t, err)
	assert.Len(t, cohorts, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryListTestPeriods(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day_of_week, period FROM test_periods WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "period"}).
			AddRow(1, "WEDNESDAY", 1).
			AddRow(2, "WEDNESDAY", 2))

	periods, err := repo.ListTestPeriods(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "WEDNESDAY", periods[0].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}
