package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		PingContext(ctx context.Context) error
	}
)

var _ DB = (*sqlx.DB)(nil) // interface compliance check

// WithTx runs fn inside a transaction. The transaction is rolled back when fn returns an error or panics.
func WithTx(ctx context.Context, db DB, fn func(tx DBExecutor) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// ForUpdate returns the row-lock suffix understood by the executor's SQL dialect.
// SQLite has no row locks; its writers are serialised on the database file instead.
func ForUpdate(exec DBExecutor) string {
	switch exec.DriverName() {
	case "postgres", "pgx":
		return " FOR UPDATE"
	default:
		return ""
	}
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy renders an ORDER BY clause, keeping only the fields present in allowed (json name -> column).
// fallback is used when nothing usable was requested.
func OrderBy(orderings []DBOrdering, allowed map[string]string, fallback string) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return fmt.Sprintf(" ORDER BY %s", fallback)
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
