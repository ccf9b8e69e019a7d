package xc

import "unsafe"

type boolData struct {
	value bool
}

func boolPayload(v *Value) (bool, bool) {
	if v == nil || v.typ.ID != TypeBool {
		return false, false
	}
	b, ok := v.data.(*boolData)
	if !ok {
		return false, false
	}
	return b.value, true
}

// NewBool creates a boolean value.
func (rt *Runtime) NewBool(b bool) *Value {
	return rt.New(TypeBool, b)
}

// BoolValue extracts the payload of a boolean value; false for anything else.
func (rt *Runtime) BoolValue(v *Value) bool {
	b, _ := boolPayload(v)
	return b
}

func boolCreate(rt *Runtime, args []any) *Value {
	v := rt.AllocObject(TypeBool, int(unsafe.Sizeof(boolData{})))
	if v == nil {
		return nil
	}
	value := false
	if len(args) > 0 {
		switch x := args[0].(type) {
		case bool:
			value = x
		case int:
			value = x != 0
		}
	}
	v.data = &boolData{value: value}
	return v
}

func boolEqual(rt *Runtime, a, b *Value) bool {
	av, aok := boolPayload(a)
	bv, bok := boolPayload(b)
	return aok && bok && av == bv
}

func boolCompare(rt *Runtime, a, b *Value) int {
	av, _ := boolPayload(a)
	bv, _ := boolPayload(b)
	switch {
	case av == bv:
		return 0
	case bv:
		return -1
	default:
		return 1
	}
}

func boolToString(rt *Runtime, self *Value, args ...*Value) *Value {
	b, ok := boolPayload(self)
	if !ok {
		return nil
	}
	if b {
		return rt.New(TypeString, "true")
	}
	return rt.New(TypeString, "false")
}

func boolNot(rt *Runtime, self *Value, args ...*Value) *Value {
	b, ok := boolPayload(self)
	if !ok {
		return nil
	}
	return rt.NewBool(!b)
}

func boolAnd(rt *Runtime, self *Value, args ...*Value) *Value {
	b, ok := boolPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	other, ok := boolPayload(args[0])
	if !ok {
		return nil
	}
	return rt.NewBool(b && other)
}

func boolOr(rt *Runtime, self *Value, args ...*Value) *Value {
	b, ok := boolPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	other, ok := boolPayload(args[0])
	if !ok {
		return nil
	}
	return rt.NewBool(b || other)
}

func boolXor(rt *Runtime, self *Value, args ...*Value) *Value {
	b, ok := boolPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	other, ok := boolPayload(args[0])
	if !ok {
		return nil
	}
	return rt.NewBool(b != other)
}

func registerBooleanType(rt *Runtime) {
	rt.RegisterType("boolean", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeBool, "toString", boolToString)
			rt.RegisterMethod(TypeBool, "not", boolNot)
			rt.RegisterMethod(TypeBool, "and", boolAnd)
			rt.RegisterMethod(TypeBool, "or", boolOr)
			rt.RegisterMethod(TypeBool, "xor", boolXor)
		},
		Create:  boolCreate,
		Equal:   boolEqual,
		Compare: boolCompare,
		Flags:   FlagPrimitive,
	})
}
