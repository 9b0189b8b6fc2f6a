package controllers

import (
	"bitlibro/src/types"
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGenre(t *testing.T) {
	gormDB, mock := newMockDB(t)
	ctrl := NewGenreController(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "genres" WHERE LOWER\(name\) = LOWER\(\$1\) AND id <> \$2`).
		WithArgs("Poetry", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "genres"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	genre, err := ctrl.CreateGenre(context.Background(), &types.CreateGenreRequestBody{Name: "  Poetry "})
	require.NoError(t, err)
	assert.Equal(t, uint(5), genre.ID)
	assert.Equal(t, "Poetry", genre.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGenreDuplicateName(t *testing.T) {
	gormDB, mock := newMockDB(t)
	ctrl := NewGenreController(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "genres" WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("poetry", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := ctrl.CreateGenre(context.Background(), &types.CreateGenreRequestBody{Name: "poetry"})
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGenreNotFound(t *testing.T) {
	gormDB, mock := newMockDB(t)
	ctrl := NewGenreController(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "genres" WHERE "genres"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := ctrl.GetGenre(context.Background(), 42)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGenreInUse(t *testing.T) {
	gormDB, mock := newMockDB(t)
	ctrl := NewGenreController(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "genres" WHERE "genres"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Classics"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "book_genres" JOIN books ON .* WHERE book_genres.genre_id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	err := ctrl.DeleteGenre(context.Background(), 3)
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGenre(t *testing.T) {
	gormDB, mock := newMockDB(t)
	ctrl := NewGenreController(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "genres" WHERE "genres"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Classics"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "book_genres"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "genres" SET "deleted_at"=\$1 WHERE "genres"."id" = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, ctrl.DeleteGenre(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
