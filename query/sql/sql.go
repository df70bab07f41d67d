// Package sql adapts database/sql result sets into query pipeline
// sources, so rows can be shaped with the same combinators as any
// other stream.
package sql

import (
	"context"
	"database/sql"

	"github.com/lguimbarda/min-query/query/core"
)

// Scanner converts the current row into a value.
type Scanner[T any] func(*sql.Rows) (T, error)

type queryOp[T any] struct {
	db     *sql.DB
	query  string
	scan   Scanner[T]
	args   []any
	params core.Params
}

// Query creates a source that executes the statement on each
// enumeration and emits one value per row. A query, scan, or row error
// is the enumeration's terminal failure.
func Query[T any](db *sql.DB, query string, scan Scanner[T], args ...any) core.Enumerable[T] {
	if db == nil {
		panic("query/sql: nil db")
	}
	if scan == nil {
		panic("query/sql: nil scanner")
	}
	return &queryOp[T]{db: db, query: query, scan: scan, args: args, params: core.DefaultParams}
}

func (op *queryOp[T]) Params() core.Params { return op.params }

func (op *queryOp[T]) WithParams(p core.Params) core.Enumerable[T] {
	return &queryOp[T]{db: op.db, query: op.query, scan: op.scan, args: op.args, params: p}
}

func (op *queryOp[T]) Enumerate(ctx context.Context) <-chan core.Result[T] {
	out := make(chan core.Result[T], 64)
	go func() {
		defer close(out)
		rows, err := op.db.QueryContext(ctx, op.query, op.args...)
		if err != nil {
			send(ctx, out, core.Err[T](err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			value, err := op.scan(rows)
			if err != nil {
				send(ctx, out, core.Err[T](err))
				return
			}
			if !send(ctx, out, core.Ok(value)) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			send(ctx, out, core.Err[T](err))
		}
	}()
	return out
}

func send[T any](ctx context.Context, out chan<- core.Result[T], r core.Result[T]) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- r:
		return true
	}
}
