package postgres

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostgreSQL integrity-constraint error codes (class 23).
const (
	pgCodeNotNullViolation    = "23502"
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
	pgCodeCheckViolation      = "23514"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}

	return nil
}

func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	pgErr := pgError(err)

	return pgErr != nil && pgErr.Code == pgCodeUniqueViolation
}

// violatedConstraintName reports which constraint a violation hit, when the
// driver exposes it. Tables with more than one unique index need this to map
// the violation to the right domain error.
func violatedConstraintName(err error) string {
	if pgErr := pgError(err); pgErr != nil {
		return pgErr.ConstraintName
	}

	return ""
}

func isForeignKeyConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	pgErr := pgError(err)

	return pgErr != nil && pgErr.Code == pgCodeForeignKeyViolation
}

func isNotNullConstraintViolation(err error) bool {
	pgErr := pgError(err)

	return pgErr != nil && pgErr.Code == pgCodeNotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	pgErr := pgError(err)

	return pgErr != nil && pgErr.Code == pgCodeCheckViolation
}
