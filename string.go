package xc

import (
	"strings"
	"unsafe"
)

type stringData struct {
	value string
}

func stringPayload(v *Value) (string, bool) {
	if v == nil || v.typ.ID != TypeString {
		return "", false
	}
	s, ok := v.data.(*stringData)
	if !ok {
		return "", false
	}
	return s.value, true
}

// NewString creates a string value.
func (rt *Runtime) NewString(s string) *Value {
	return rt.New(TypeString, s)
}

// StringValue extracts the payload of a string value; "" for anything else.
func (rt *Runtime) StringValue(v *Value) string {
	s, _ := stringPayload(v)
	return s
}

func stringCreate(rt *Runtime, args []any) *Value {
	var value string
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			value = s
		}
	}
	// The variable part counts toward the heap budget alongside the struct.
	v := rt.AllocObject(TypeString, int(unsafe.Sizeof(stringData{}))+len(value))
	if v == nil {
		return nil
	}
	v.data = &stringData{value: value}
	return v
}

func stringEqual(rt *Runtime, a, b *Value) bool {
	av, aok := stringPayload(a)
	bv, bok := stringPayload(b)
	return aok && bok && av == bv
}

func stringCompare(rt *Runtime, a, b *Value) int {
	av, _ := stringPayload(a)
	bv, _ := stringPayload(b)
	return strings.Compare(av, bv)
}

func stringLength(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok {
		return nil
	}
	return rt.NewNumber(float64(len(s)))
}

func stringToString(rt *Runtime, self *Value, args ...*Value) *Value {
	return self
}

func stringConcat(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	other, ok := stringPayload(args[0])
	if !ok {
		return nil
	}
	return rt.NewString(s + other)
}

func stringIndexOf(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	needle, ok := stringPayload(args[0])
	if !ok {
		return nil
	}
	return rt.NewNumber(float64(strings.Index(s, needle)))
}

func stringSubstring(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	start, ok := numberPayload(args[0])
	if !ok {
		return nil
	}
	end := float64(len(s))
	if len(args) > 1 {
		if e, ok := numberPayload(args[1]); ok {
			end = e
		}
	}
	lo, hi := clampRange(int(start), int(end), len(s))
	return rt.NewString(s[lo:hi])
}

func stringSplit(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok {
		return nil
	}
	sep := ","
	if len(args) > 0 {
		if v, ok := stringPayload(args[0]); ok {
			sep = v
		}
	}
	arr := rt.New(TypeArray)
	for _, part := range strings.Split(s, sep) {
		p := rt.NewString(part)
		rt.Call(arr, "push", p)
		rt.dropRef(p)
	}
	return arr
}

func stringTrim(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok {
		return nil
	}
	return rt.NewString(strings.TrimSpace(s))
}

func stringToLowerCase(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok {
		return nil
	}
	return rt.NewString(strings.ToLower(s))
}

func stringToUpperCase(rt *Runtime, self *Value, args ...*Value) *Value {
	s, ok := stringPayload(self)
	if !ok {
		return nil
	}
	return rt.NewString(strings.ToUpper(s))
}

// clampRange normalizes a [start,end) pair against length, resolving
// negative indices from the end.
func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		return 0, 0
	}
	return start, end
}

func registerStringType(rt *Runtime) {
	rt.RegisterType("string", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeString, "length", stringLength)
			rt.RegisterMethod(TypeString, "toString", stringToString)
			rt.RegisterMethod(TypeString, "concat", stringConcat)
			rt.RegisterMethod(TypeString, "indexOf", stringIndexOf)
			rt.RegisterMethod(TypeString, "substring", stringSubstring)
			rt.RegisterMethod(TypeString, "split", stringSplit)
			rt.RegisterMethod(TypeString, "trim", stringTrim)
			rt.RegisterMethod(TypeString, "toLowerCase", stringToLowerCase)
			rt.RegisterMethod(TypeString, "toUpperCase", stringToUpperCase)
		},
		Create:  stringCreate,
		Equal:   stringEqual,
		Compare: stringCompare,
		Flags:   FlagPrimitive,
	})
}
