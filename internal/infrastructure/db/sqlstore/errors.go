package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	gosqlite "github.com/glebarez/go-sqlite"
	"gorm.io/gorm"

	"github.com/bizledger/records-api/internal/core/domain"
)

var domainErrors = []error{
	domain.ErrNotFound,
	domain.ErrConflict,
	domain.ErrForbidden,
	domain.ErrInvalidOperation,
	domain.ErrValidationFailed,
	domain.ErrUnavailable,
}

// translate maps gorm and driver failures onto the domain taxonomy. Errors
// already carrying a domain sentinel pass through.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}

	switch {
	case isSQLiteConstraint(err, sqliteConstraintForeignKey, sqliteConstraintTrigger):
		return fmt.Errorf("%s: record is still referenced: %w", op, domain.ErrInvalidOperation)
	case isSQLiteConstraint(err, sqliteConstraintUnique, sqliteConstraintPrimaryKey):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: record is still referenced: %w", op, domain.ErrInvalidOperation)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Extended sqlite result codes. A RESTRICT action fails with the trigger code
// and is not translated by the dialector.
const (
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintTrigger    = 1811
	sqliteConstraintUnique     = 2067
)

func isSQLiteConstraint(err error, codes ...int) bool {
	var se *gosqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, code := range codes {
		if se.Code() == code {
			return true
		}
	}
	return false
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a lower-cased substring pattern escaped with '!'.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

// searchClause ORs a case-insensitive LIKE over columns.
func searchClause(columns ...string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE @q ESCAPE '!'"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
