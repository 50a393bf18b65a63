package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"gorm.io/gorm"

	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

const uniqueViolationCode = "23505"

// Query describes one repository call for metrics and error wrapping.
type Query struct {
	Driver    string
	Operation string
	Table     string
	Start     time.Time
}

func NewQuery(driver, operation, table string) Query {
	return Query{Driver: driver, Operation: operation, Table: table, Start: time.Now()}
}

func (q Query) observe() {
	metrics.DBQueryDurationSeconds.WithLabelValues(q.Driver, q.Operation, q.Table).Observe(time.Since(q.Start).Seconds())
}

func (q Query) fail(err error) error {
	metrics.DBQueryErrors.WithLabelValues(q.Driver, q.Operation, q.Table, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", q.Operation, err)
}

// HandleQueryError maps "no rows" from either driver to notFoundErr.
func (q Query) HandleQueryError(err error, notFoundErr error) error {
	q.observe()

	if err == nil {
		return nil
	}
	if IsNoRows(err) {
		return notFoundErr
	}
	return q.fail(err)
}

func (q Query) HandleExecError(err error) error {
	q.observe()

	if err == nil {
		return nil
	}
	return q.fail(err)
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// older sqlite drivers do not translate constraint errors
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
