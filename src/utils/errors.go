package utils

import (
	"bitlibro/src/types"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	PG_UNIQUE_VIOLATION    = "23505"
	PG_FOREIGN_KEY_VIOLATE = "23503"
	PG_EXCLUSION_VIOLATION = "23P01"
)

var uniqueConstraintMessages = map[string]string{
	"idx_users_ci":       "ci is already registered",
	"idx_users_email":    "email is already registered",
	"idx_users_username": "username is already registered",
	"idx_books_name":     "a book with that name already exists",
	"idx_books_isbn":     "a book with that ISBN already exists",
	"idx_genres_name":    "a genre with that name already exists",
}

// TranslatePgError turns constraint violations raised by PostgreSQL into Conflict errors.
// Any other error is returned unchanged.
func TranslatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case PG_UNIQUE_VIOLATION:
		if msg, ok := uniqueConstraintMessages[pgErr.ConstraintName]; ok {
			return types.NewConflictError("%s", msg)
		}
		return types.NewConflictError("duplicate value violates %s", pgErr.ConstraintName)
	case PG_EXCLUSION_VIOLATION:
		return types.NewConflictError("the book already has a pending reservation overlapping those dates")
	case PG_FOREIGN_KEY_VIOLATE:
		return types.NewConflictError("the record is still referenced by other data")
	}
	return err
}

func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	err = TranslatePgError(err)
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, types.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, types.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorMessage is the text sent to clients. Internal errors never leak their detail.
func ErrorMessage(err error) string {
	err = TranslatePgError(err)
	var appErr *types.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "record not found"
	}
	return "something went wrong"
}
