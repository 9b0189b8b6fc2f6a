package repositories

import (
	"bitlibro/src/models"
	"bitlibro/src/types"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gormDB, mock
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestIsOverlapping(t *testing.T) {
	gormDB, mock := newMockDB(t)
	store := NewReservationStore(gormDB)
	start, end := date("2024-01-15"), date("2024-01-20")

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations" WHERE \(reservations.book_id = \$1 AND reservations.start_date <= \$2 AND reservations.end_date >= \$3\) AND reservations.status = \$4 AND "reservations"."deleted_at" IS NULL`).
		WithArgs(3, end, start, "Pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	overlapping, err := store.IsOverlapping(context.Background(), 3, start, end, 0)
	require.NoError(t, err)
	assert.True(t, overlapping)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsOverlappingExcludesReservation(t *testing.T) {
	gormDB, mock := newMockDB(t)
	store := NewReservationStore(gormDB)
	start, end := date("2024-01-10"), date("2024-01-15")

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations" WHERE \(reservations.book_id = \$1 AND reservations.start_date <= \$2 AND reservations.end_date >= \$3\) AND reservations.id <> \$4 AND reservations.status = \$5`).
		WithArgs(3, end, start, 9, "Pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	overlapping, err := store.IsOverlapping(context.Background(), 3, start, end, 9)
	require.NoError(t, err)
	assert.False(t, overlapping)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicLockBookNotFoundRollsBack(t *testing.T) {
	gormDB, mock := newMockDB(t)
	store := NewReservationStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "books" WHERE "books"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectRollback()

	err := store.Atomic(context.Background(), func(tx ReservationTx) error {
		_, err := tx.LockBook(5)
		return err
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicRollsBackCreatedClient(t *testing.T) {
	gormDB, mock := newMockDB(t)
	store := NewReservationStore(gormDB)
	failure := errors.New("insert reservation failed")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectRollback()

	err := store.Atomic(context.Background(), func(tx ReservationTx) error {
		client := &models.User{
			Email:    "1234567890@fake.com",
			Username: "1234567890",
			Name:     "Ada",
			LastName: "Lovelace",
			Ci:       "1234567890",
			Role:     types.ROLE_CLIENT,
		}
		if err := tx.CreateClient(client); err != nil {
			return err
		}
		assert.Equal(t, uint(11), client.ID)
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicCommits(t *testing.T) {
	gormDB, mock := newMockDB(t)
	store := NewReservationStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE ci = \$1`).
		WithArgs("1234567890").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	err := store.Atomic(context.Background(), func(tx ReservationTx) error {
		exists, err := tx.CiExists("1234567890")
		if err != nil {
			return err
		}
		assert.False(t, exists)
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
