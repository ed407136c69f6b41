package ormr

import (
	"fmt"
	"strconv"
	"strings"
)

// statement is rendered SQL plus the parameters to bind, in the exact order
// the placeholders appear. Every constructor below maintains the invariant
// that the number of `?` placeholders equals len(args).
type statement struct {
	sql  string
	args []Value
}

// bindArgs returns the driver-ready argument list.
func (s statement) bindArgs() []any {
	if len(s.args) == 0 {
		return nil
	}
	out := make([]any, len(s.args))
	for i, v := range s.args {
		out[i] = v.arg()
	}
	return out
}

// clauseOp discriminates the supported filter comparisons.
type clauseOp uint8

const (
	opEq clauseOp = iota
	opLike
	opGt
	opLt
)

// sql returns the rendered comparison, placeholder included.
func (o clauseOp) sql() string {
	switch o {
	case opLike:
		return " LIKE ?"
	case opGt:
		return " > ?"
	case opLt:
		return " < ?"
	default:
		return " = ?"
	}
}

// clause is one filter predicate: a column compared against one bound value.
// Clauses only ever combine with AND.
type clause struct {
	field string
	op    clauseOp
	value Value
}

// querySpec is the accumulated filter/order/limit state of a single SELECT.
// Clause order is accumulation order and is preserved in the rendered SQL
// and in the bound parameter list.
type querySpec struct {
	clauses   []clause
	orderBy   string
	ascending bool
	hasOrder  bool
	limit     int
	hasLimit  bool
}

// --------------------------------
// Shape validation
// --------------------------------

// shape validates a model's static shape before any SQL is rendered: a
// non-empty table name, a non-empty field list with unique names, and a
// primary key that is one of the fields. Violations are ErrInvalidModel.
func shape(m Model) (table string, fields []string, pk string, err error) {
	table = m.TableName()
	if table == "" {
		return "", nil, "", fmt.Errorf("%w: empty table name", ErrInvalidModel)
	}
	fields = m.Fields()
	if len(fields) == 0 {
		return "", nil, "", fmt.Errorf("%w: %s has no fields", ErrInvalidModel, table)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "" {
			return "", nil, "", fmt.Errorf("%w: %s has an empty field name", ErrInvalidModel, table)
		}
		if seen[f] {
			return "", nil, "", fmt.Errorf("%w: %s has duplicate field %q", ErrInvalidModel, table, f)
		}
		seen[f] = true
	}
	pk = m.PrimaryKey()
	if !seen[pk] {
		return "", nil, "", fmt.Errorf("%w: primary key %q is not a field of %s", ErrInvalidModel, pk, table)
	}
	return table, fields, pk, nil
}

// rowFor returns the model's current row, checking it aligns 1:1 with the
// field list.
func rowFor(m Model, table string, fields []string) ([]Value, error) {
	row := m.ToRow()
	if len(row) != len(fields) {
		return nil, fmt.Errorf("%w: %s ToRow returned %d values for %d fields", ErrInvalidModel, table, len(row), len(fields))
	}
	return row, nil
}

// --------------------------------
// Statement constructors
// --------------------------------

// buildCreateTable renders the table definition. The primary key column is
// typed after its native kind; every other column is TEXT. This is a
// deliberate schema simplification, not lossy: TEXT affinity keeps the
// decimal form and the Value accessors parse it back on decode.
func buildCreateTable(m Model) (statement, error) {
	table, fields, pk, err := shape(m)
	if err != nil {
		return statement{}, err
	}
	row, err := rowFor(m, table, fields)
	if err != nil {
		return statement{}, err
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		if f == pk {
			b.WriteByte(' ')
			b.WriteString(columnType(row[i].Kind()))
			b.WriteString(" PRIMARY KEY")
		} else {
			b.WriteString(" TEXT")
		}
	}
	b.WriteByte(')')
	return statement{sql: b.String()}, nil
}

// columnType maps a Value kind to the engine column type used for the
// primary key definition.
func columnType(k Kind) string {
	switch k {
	case KindFloat:
		return "REAL"
	case KindText:
		return "TEXT"
	default:
		// Integer keys, and the zero-value NULL a fresh model reports.
		return "INTEGER"
	}
}

// buildInsert renders INSERT INTO t (f1, ...) VALUES (?, ...) with the row
// values bound in field order.
func buildInsert(m Model) (statement, error) {
	table, fields, _, err := shape(m)
	if err != nil {
		return statement{}, err
	}
	row, err := rowFor(m, table, fields)
	if err != nil {
		return statement{}, err
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(") VALUES (")
	for i := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	b.WriteByte(')')
	return statement{sql: b.String(), args: row}, nil
}

// buildSelect renders SELECT f1, ... FROM t with the spec's WHERE clauses in
// accumulation order, then ORDER BY and LIMIT if set. Ordering and limit
// never contribute bound parameters; the limit is validated upstream and
// rendered inline.
func buildSelect(m Model, spec querySpec) (statement, error) {
	table, fields, _, err := shape(m)
	if err != nil {
		return statement{}, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)

	var args []Value
	for i, c := range spec.clauses {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(c.field)
		b.WriteString(c.op.sql())
		args = append(args, c.value)
	}

	if spec.hasOrder {
		b.WriteString(" ORDER BY ")
		b.WriteString(spec.orderBy)
		if spec.ascending {
			b.WriteString(" ASC")
		} else {
			b.WriteString(" DESC")
		}
	}
	if spec.hasLimit {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(spec.limit))
	}
	return statement{sql: b.String(), args: args}, nil
}

// buildFindByID is a select with a single implicit equals clause on the
// primary key, no ordering, no limit.
func buildFindByID(m Model, id any) (statement, error) {
	_, _, pk, err := shape(m)
	if err != nil {
		return statement{}, err
	}
	spec := querySpec{clauses: []clause{{field: pk, op: opEq, value: fromNative(id)}}}
	return buildSelect(m, spec)
}

// buildUpdate renders UPDATE t SET f2 = ?, ... WHERE pk = ?: every non-key
// field in order, then the key value bound last. The key itself is never in
// the SET list.
func buildUpdate(m Model) (statement, error) {
	table, fields, pk, err := shape(m)
	if err != nil {
		return statement{}, err
	}
	row, err := rowFor(m, table, fields)
	if err != nil {
		return statement{}, err
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")

	var (
		args  = make([]Value, 0, len(fields))
		pkVal Value
		first = true
	)
	for i, f := range fields {
		if f == pk {
			pkVal = row[i]
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(f)
		b.WriteString(" = ?")
		args = append(args, row[i])
	}
	if first {
		return statement{}, fmt.Errorf("%w: %s has no non-key fields to update", ErrInvalidModel, table)
	}

	b.WriteString(" WHERE ")
	b.WriteString(pk)
	b.WriteString(" = ?")
	args = append(args, pkVal)
	return statement{sql: b.String(), args: args}, nil
}

// buildDelete renders DELETE FROM t WHERE pk = ? with the id as sole
// parameter.
func buildDelete(m Model, id any) (statement, error) {
	table, _, pk, err := shape(m)
	if err != nil {
		return statement{}, err
	}
	return statement{
		sql:  "DELETE FROM " + table + " WHERE " + pk + " = ?",
		args: []Value{fromNative(id)},
	}, nil
}

// buildDropTable renders DROP TABLE IF EXISTS t. No parameters.
func buildDropTable(m Model) (statement, error) {
	table, _, _, err := shape(m)
	if err != nil {
		return statement{}, err
	}
	return statement{sql: "DROP TABLE IF EXISTS " + table}, nil
}
