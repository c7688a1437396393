package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/proserv/engagement-api/internal/models"
)

// newMockRepository backs the repository with sqlmock so the generated SQL
// can be pinned without a live database.
func newMockRepository(t *testing.T) (ProjectRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewProjectRepository(db), mock
}

func countRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(int64(1))
}

// The pipeline filter must translate the derivation rules into subqueries on
// estimate version statuses. These tests pin the shape of that SQL.
func TestCount_PipelinePredicates(t *testing.T) {
	t.Run("estimating requires a review-active version", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "projects" WHERE .*projects\.status = \$\d AND EXISTS \(SELECT 1 FROM "estimate_versions" WHERE .*status.* IN \(\$\d,\$\d\)\)`).
			WillReturnRows(countRow())

		status := models.PipelineEstimating
		count, err := repo.Count(ProjectFilter{OwnerID: "owner-1", Pipeline: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("planning requires no review-active version", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "projects" WHERE .*NOT EXISTS \(SELECT 1 FROM "estimate_versions"`).
			WillReturnRows(countRow())

		status := models.PipelinePlanning
		count, err := repo.Count(ProjectFilter{OwnerID: "owner-1", Pipeline: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in-flight only checks project status", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "projects" WHERE .*projects\.created_by_id = \$\d AND projects\.status = \$\d AND projects\.status <> \$\d`).
			WillReturnRows(countRow())

		status := models.PipelineInFlight
		count, err := repo.Count(ProjectFilter{OwnerID: "owner-1", Pipeline: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCount_SearchSpansNameClientAndOwner(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "projects" WHERE .*LOWER\(projects\.name\) LIKE .* OR LOWER\(projects\.client_name\) LIKE .* OR projects\.created_by_id IN \(SELECT users\.id FROM "users"`).
		WillReturnRows(countRow())

	count, err := repo.Count(ProjectFilter{OwnerID: "owner-1", Search: "Atlas"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
