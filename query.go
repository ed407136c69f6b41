package ormr

import (
	"context"
	"fmt"
)

// Query accumulates filter, ordering, and limit state for one SELECT against
// a model's table. It is NOT safe for concurrent use and is single-use: a
// terminal call (Fetch, FetchOne) consumes it, and any later use reports
// ErrQueryConsumed. Errors latch: after the first failed builder call, the
// remaining chained calls are no-ops and the terminal call reports the error
// before any engine work happens.
type Query struct {
	db       *DB
	model    Model
	spec     querySpec
	consumed bool
	err      error
}

// Query starts a filtered read of the model's table.
func (db *DB) Query(m Model) *Query {
	return &Query{db: db, model: m}
}

// where appends one predicate. The comparison value is captured in its text
// form, matching how non-key columns are persisted.
func (q *Query) where(field string, op clauseOp, value any) *Query {
	if q.consumed {
		q.err = ErrQueryConsumed
		return q
	}
	if q.err != nil {
		return q
	}
	q.spec.clauses = append(q.spec.clauses, clause{field: field, op: op, value: Text(fmt.Sprint(value))})
	return q
}

// WhereEq adds `field = ?`.
func (q *Query) WhereEq(field string, value any) *Query {
	return q.where(field, opEq, value)
}

// WhereLike adds `field LIKE ?`.
func (q *Query) WhereLike(field string, pattern any) *Query {
	return q.where(field, opLike, pattern)
}

// WhereGt adds `field > ?`.
func (q *Query) WhereGt(field string, value any) *Query {
	return q.where(field, opGt, value)
}

// WhereLt adds `field < ?`.
func (q *Query) WhereLt(field string, value any) *Query {
	return q.where(field, opLt, value)
}

// OrderBy sets the ordering column and direction. Last call wins.
func (q *Query) OrderBy(field string, ascending bool) *Query {
	if q.consumed {
		q.err = ErrQueryConsumed
		return q
	}
	if q.err != nil {
		return q
	}
	q.spec.orderBy = field
	q.spec.ascending = ascending
	q.spec.hasOrder = true
	return q
}

// Limit caps the row count. Last call wins; a negative n is ErrInvalidQuery,
// reported at the terminal call before anything reaches the engine.
func (q *Query) Limit(n int) *Query {
	if q.consumed {
		q.err = ErrQueryConsumed
		return q
	}
	if q.err != nil {
		return q
	}
	if n < 0 {
		q.err = fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, n)
		return q
	}
	q.spec.limit = n
	q.spec.hasLimit = true
	return q
}

// Preview renders the SELECT and its bound args without executing or
// consuming the query. Use it to log/inspect the exact statement Fetch would
// run; safe to call multiple times.
func (q *Query) Preview() (string, []any, error) {
	if q.consumed {
		return "", nil, ErrQueryConsumed
	}
	if q.err != nil {
		return "", nil, q.err
	}
	st, err := buildSelect(q.model, q.spec)
	if err != nil {
		return "", nil, err
	}
	return st.sql, st.bindArgs(), nil
}

// Fetch runs the accumulated query and loads every matching row into dest
// (same destination contract as SelectAll). It consumes the query.
func (q *Query) Fetch(dest any) error {
	return q.FetchContext(context.Background(), dest)
}

// FetchContext is the context-aware variant of Fetch.
func (q *Query) FetchContext(ctx context.Context, dest any) error {
	st, err := q.take()
	if err != nil {
		return err
	}
	d, err := destSliceOf(dest)
	if err != nil {
		return err
	}
	return q.db.selectInto(ctx, st, d)
}

// FetchOne runs the accumulated query and decodes the first matching row
// into dest, reporting false when nothing matches. When the caller set no
// limit, an implicit LIMIT 1 caps the scan: the caller only ever sees the
// first row, so the result is unaffected. It consumes the query.
func (q *Query) FetchOne(dest Model) (bool, error) {
	return q.FetchOneContext(context.Background(), dest)
}

// FetchOneContext is the context-aware variant of FetchOne.
func (q *Query) FetchOneContext(ctx context.Context, dest Model) (bool, error) {
	if !q.consumed && q.err == nil && !q.spec.hasLimit {
		q.spec.limit = 1
		q.spec.hasLimit = true
	}
	st, err := q.take()
	if err != nil {
		return false, err
	}
	return q.db.selectOne(ctx, st, dest)
}

// take renders the accumulated spec into a statement and consumes the query.
func (q *Query) take() (statement, error) {
	if q.consumed {
		return statement{}, ErrQueryConsumed
	}
	q.consumed = true
	if q.err != nil {
		return statement{}, q.err
	}
	return buildSelect(q.model, q.spec)
}
