package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deatl/backend/internal/domain/shared"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormMilestoneRepositoryQueryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("get surfaces driver errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormMilestoneRepository(db)

		driverErr := errors.New("connection reset")
		mock.ExpectQuery(`SELECT \* FROM "milestones"`).WillReturnError(driverErr)

		_, err := repo.Get(ctx, "proj1", "milestone-x")
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get maps empty result to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormMilestoneRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "milestones"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.Get(ctx, "proj1", "milestone-x")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count surfaces driver errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormCategoryRepository(db)

		driverErr := errors.New("connection reset")
		mock.ExpectQuery(`SELECT count\(\*\) FROM "milestones"`).WillReturnError(driverErr)

		_, err := repo.CountMilestonesReferencing(ctx, "cat1")
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
