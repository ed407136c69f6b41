package ormr

import (
	"fmt"
	"strconv"
)

// Kind discriminates the scalar kinds a Value can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
)

// Value is one column cell: a closed tagged union over the scalar kinds the
// engine can store. The zero Value is NULL. Values are immutable; all
// conversions are pure.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Int wraps an int64 cell.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float64 cell.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text wraps a string cell.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Null returns the NULL cell.
func Null() Value { return Value{} }

// Kind reports the stored kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the cell as an int64. Text cells are parsed: non-key columns
// are persisted with TEXT affinity, so a numeric field read back from the
// engine may arrive as its decimal text form. Anything else is
// ErrTypeMismatch.
func (v Value) Int() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindText:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: text %q is not an integer", ErrTypeMismatch, v.s)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: cannot read %s cell as integer", ErrTypeMismatch, v.kind)
	}
}

// Float returns the cell as a float64. Integer cells widen (the engine may
// hand back an integer for a whole-valued REAL) and text cells are parsed.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	case KindText:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: text %q is not a number", ErrTypeMismatch, v.s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: cannot read %s cell as float", ErrTypeMismatch, v.kind)
	}
}

// Text returns the cell as a string. Only text cells qualify; numeric cells
// are never silently stringified on the way out.
func (v Value) Text() (string, error) {
	if v.kind != KindText {
		return "", fmt.Errorf("%w: cannot read %s cell as text", ErrTypeMismatch, v.kind)
	}
	return v.s, nil
}

// String renders a display form. It is for diagnostics, not for SQL: values
// always travel to the engine as bound parameters.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	default:
		return "NULL"
	}
}

// arg returns the driver-bindable native for this cell.
func (v Value) arg() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	default:
		return nil
	}
}

// fromNative converts a caller-supplied scalar into a Value. Total: every
// supported native has exactly one representation, and anything exotic falls
// back to its fmt text form.
func fromNative(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case bool:
		if x {
			return Int(1)
		}
		return Int(0)
	default:
		return Text(fmt.Sprint(v))
	}
}

// valueOf classifies a scanned driver value into a Value. database/sql
// normalizes driver results to int64/float64/string/[]byte/nil for us.
func valueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case int64:
		return Int(x)
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case bool:
		if x {
			return Int(1)
		}
		return Int(0)
	default:
		return Text(fmt.Sprint(v))
	}
}
