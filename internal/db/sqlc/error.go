package db

import (
	"errors"
	
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CheckViolationCode = "23514"
)

const (
	SingleContextConstraint = "notifications_single_context_check"
)

var ErrRecordNotFound = pgx.ErrNoRows

// ErrPersistence marks failures of the underlying storage engine.
var ErrPersistence = errors.New("persistence error")

// ErrorDescription returns the error code and constraint name from a Postgres error.
func ErrorDescription(err error) (errCode string, constraintName string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	
	return
}
