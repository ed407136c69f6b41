package ormr

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

var modelIface = reflect.TypeOf((*Model)(nil)).Elem()

// destSlice is a validated pointer-to-slice destination for a read: the
// settable slice value, the concrete record type T, and whether elements are
// appended as *T or T.
type destSlice struct {
	slice reflect.Value
	elemT reflect.Type
	isPtr bool
}

// destSliceOf validates dest as *[]T or *[]*T where *T implements Model, and
// truncates any existing contents so a read always replaces, never appends.
func destSliceOf(dest any) (*destSlice, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("ormr: dest must be a non-nil pointer to a slice")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("ormr: dest must point to a slice, not %s", rv.Kind())
	}

	elemT := rv.Type().Elem()
	isPtr := elemT.Kind() == reflect.Pointer
	if isPtr {
		elemT = elemT.Elem()
	}
	if elemT.Kind() != reflect.Struct || !reflect.PointerTo(elemT).Implements(modelIface) {
		return nil, fmt.Errorf("ormr: *%s does not implement Model", elemT)
	}

	if rv.Len() != 0 {
		rv.Set(rv.Slice(0, 0))
	}
	return &destSlice{slice: rv, elemT: elemT, isPtr: isPtr}, nil
}

// prototype returns a fresh zero record, used to read the static shape.
func (d *destSlice) prototype() Model {
	return reflect.New(d.elemT).Interface().(Model)
}

// selectInto runs st and appends one decoded record per returned row to the
// destination. A single row's decode failure fails the whole call: no
// partial result set is ever handed back.
func (db *DB) selectInto(ctx context.Context, st statement, d *destSlice) error {
	rows, err := db.conn.QueryContext(ctx, st.sql, st.bindArgs()...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return err
		}
		ptr := reflect.New(d.elemT)
		m := ptr.Interface().(Model)
		if err := m.FromRow(row); err != nil {
			return wrapDecode(m.TableName(), err)
		}
		if d.isPtr {
			d.slice.Set(reflect.Append(d.slice, ptr))
		} else {
			d.slice.Set(reflect.Append(d.slice, ptr.Elem()))
		}
	}
	return rows.Err()
}

// scanRow reads the current row into one Value per column.
func scanRow(rows *sql.Rows) ([]Value, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	raw := make([]any, len(cols))
	for i := range raw {
		raw[i] = new(any)
	}
	if err := rows.Scan(raw...); err != nil {
		return nil, err
	}
	row := make([]Value, len(cols))
	for i := range raw {
		row[i] = valueOf(*(raw[i].(*any)))
	}
	return row, nil
}
