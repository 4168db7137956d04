package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

// insertOnce runs an INSERT ... ON CONFLICT DO NOTHING statement and reports a
// skipped row as ErrUniqueConstraintViolation.
func insertOnce(ctx context.Context, exec sqlx.ExtContext, op, query string, arg interface{}) error {
	result, err := sqlx.NamedExecContext(ctx, exec, query, arg)
	if err != nil {
		if IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrUniqueConstraintViolation.Code, appErrors.ErrUniqueConstraintViolation.Status, op)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrUniqueConstraintViolation, op+": natural key already exists")
	}
	return nil
}

// link inserts a relation row; an existing edge is not an error.
func link(ctx context.Context, exec sqlx.ExtContext, op, query string, args ...interface{}) error {
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
