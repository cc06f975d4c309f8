package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes and the message fragments SQLite reports for the
// same violations. TranslateError covers unique and foreign keys on both
// drivers; the fragments cover NOT NULL and untranslated connections.
var (
	uniqueViolation     = []string{"23505", "duplicate key", "unique constraint"}
	foreignKeyViolation = []string{"23503", "foreign key"}
	notNullViolation    = []string{"23502", "null value", "not null"}
)

func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || mentions(err, uniqueViolation)
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || mentions(err, foreignKeyViolation)
}

func isNotNullConstraintViolation(err error) bool {
	return mentions(err, notNullViolation)
}

func mentions(err error, fragments []string) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range fragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}
