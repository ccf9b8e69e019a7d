package xc

import (
	"strconv"

	"github.com/pkg/errors"
)

// ErrNotComparable reports a Compare between values whose type defines no
// ordering.
var ErrNotComparable = errors.New("xc: values are not comparable")

// Equal reports value equality. Values of different types are never equal;
// within a type the lifecycle's Equal callback decides, and types without
// one fall back to identity.
func (rt *Runtime) Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.typ != b.typ {
		return false
	}
	if a.typ.Equal != nil {
		return a.typ.Equal(rt, a, b)
	}
	return false
}

// StrictEqual reports identity: the same heap object, or both null.
func (rt *Runtime) StrictEqual(a, b *Value) bool {
	return a == b
}

// Compare orders two values of the same type using the type's Compare
// callback. The result is negative, zero or positive; ErrNotComparable when
// the types differ or no ordering is defined.
func (rt *Runtime) Compare(a, b *Value) (int, error) {
	if a == nil || b == nil || a.typ != b.typ {
		return 0, ErrNotComparable
	}
	if a.typ.Compare == nil {
		return 0, errors.Wrapf(ErrNotComparable, "type %s", a.typ.Name)
	}
	return a.typ.Compare(rt, a, b), nil
}

// ToBool applies JavaScript-like truthiness: null and false are false, zero
// numbers and empty strings are false, everything else is true.
func (rt *Runtime) ToBool(v *Value) bool {
	switch v.TypeID() {
	case TypeNull:
		return false
	case TypeBool:
		return rt.BoolValue(v)
	case TypeNumber:
		return rt.NumberValue(v) != 0
	case TypeString:
		return rt.StringValue(v) != ""
	default:
		return true
	}
}

// ToNumber converts a value to a number: booleans become 0/1, strings parse
// as floats (0 when malformed), everything else is 0.
func (rt *Runtime) ToNumber(v *Value) float64 {
	switch v.TypeID() {
	case TypeNumber:
		return rt.NumberValue(v)
	case TypeBool:
		if rt.BoolValue(v) {
			return 1
		}
		return 0
	case TypeString:
		f, err := strconv.ParseFloat(rt.StringValue(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToString renders a value for display.
func (rt *Runtime) ToString(v *Value) string {
	switch v.TypeID() {
	case TypeNull:
		return "null"
	case TypeBool:
		if rt.BoolValue(v) {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(rt.NumberValue(v))
	case TypeString:
		return rt.StringValue(v)
	case TypeException:
		return rt.formatError(v)
	default:
		if s := rt.Call(v, "toString"); s != nil {
			str := rt.StringValue(s)
			if s != v {
				rt.dropRef(s)
			}
			return str
		}
		return "<" + v.typ.Name + ">"
	}
}
