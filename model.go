package ormr

import "fmt"

// Model is the capability set a type provides to be persisted. One
// implementation per persisted type; methods describing the static shape
// (TableName, Fields, PrimaryKey) must return the same answer for the
// lifetime of the type.
//
// Fields() defines the column order. The same order is used for CREATE TABLE
// column definitions, INSERT value binding, and the rows handed to FromRow —
// it is never reinterpreted per operation. ToRow() must produce exactly one
// Value per field, in Fields() order.
//
// FromRow reconstructs the record in place from one fetched row, so persisted
// types implement Model on the pointer receiver. It must fail (never silently
// default) when the row's arity or a cell's kind does not match the target
// field; the library reports such failures wrapped in ErrDecode.
type Model interface {
	TableName() string
	Fields() []string
	PrimaryKey() string
	ToRow() []Value
	FromRow(row []Value) error
}

// CheckArity is a one-line guard for FromRow implementations: it returns an
// ErrDecode-wrapped error when a fetched row does not have the expected
// number of cells.
func CheckArity(row []Value, want int) error {
	if len(row) != want {
		return fmt.Errorf("%w: row has %d cells, want %d", ErrDecode, len(row), want)
	}
	return nil
}
