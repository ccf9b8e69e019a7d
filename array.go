package xc

import (
	"strings"
	"unsafe"
)

type arrayData struct {
	items []*Value
}

func arrayPayload(v *Value) (*arrayData, bool) {
	if v == nil || v.typ.ID != TypeArray {
		return nil, false
	}
	a, ok := v.data.(*arrayData)
	return a, ok
}

// NewArray creates an array value holding the given elements.
func (rt *Runtime) NewArray(items ...*Value) *Value {
	args := make([]any, 0, len(items)+1)
	args = append(args, len(items))
	for _, it := range items {
		args = append(args, it)
	}
	return rt.New(TypeArray, args...)
}

// ArrayLen reports the element count of an array value.
func (rt *Runtime) ArrayLen(v *Value) int {
	a, ok := arrayPayload(v)
	if !ok {
		return 0
	}
	return len(a.items)
}

// ArrayAt returns the element at index, nil when out of range.
func (rt *Runtime) ArrayAt(v *Value, index int) *Value {
	a, ok := arrayPayload(v)
	if !ok || index < 0 || index >= len(a.items) {
		return nil
	}
	return a.items[index]
}

// Creator args: an optional leading int capacity, then initial elements.
func arrayCreate(rt *Runtime, args []any) *Value {
	capacity := 0
	elems := args
	if len(args) > 0 {
		if c, ok := args[0].(int); ok {
			capacity = c
			elems = args[1:]
		}
	}
	if capacity < len(elems) {
		capacity = len(elems)
	}
	v := rt.AllocObject(TypeArray, int(unsafe.Sizeof(arrayData{})))
	if v == nil {
		return nil
	}
	a := &arrayData{items: make([]*Value, 0, capacity)}
	for _, e := range elems {
		item, _ := e.(*Value)
		a.items = append(a.items, item)
	}
	v.data = a
	return v
}

func arrayDestroy(rt *Runtime, v *Value) {
	if a, ok := arrayPayload(v); ok {
		a.items = nil
	}
}

func arrayMark(v *Value, mark MarkFunc) {
	a, ok := arrayPayload(v)
	if !ok {
		return
	}
	for _, item := range a.items {
		if item != nil {
			mark(item)
		}
	}
}

func arrayEqual(rt *Runtime, a, b *Value) bool {
	return a == b
}

func arrayLength(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok {
		return nil
	}
	return rt.NewNumber(float64(len(a.items)))
}

func arrayGet(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	idx, ok := numberPayload(args[0])
	if !ok {
		return nil
	}
	i := int(idx)
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

func arraySet(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(args) < 2 {
		return nil
	}
	idx, ok := numberPayload(args[0])
	if !ok {
		return nil
	}
	i := int(idx)
	if i < 0 {
		return nil
	}
	for len(a.items) <= i {
		a.items = append(a.items, nil)
	}
	a.items[i] = args[1]
	return args[1]
}

func arrayPush(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	a.items = append(a.items, args[0])
	return self
}

func arrayPop(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(a.items) == 0 {
		return nil
	}
	last := a.items[len(a.items)-1]
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
	return last
}

func arrayShift(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(a.items) == 0 {
		return nil
	}
	first := a.items[0]
	copy(a.items, a.items[1:])
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
	return first
}

func arrayUnshift(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	a.items = append([]*Value{args[0]}, a.items...)
	return self
}

func arrayIndexOf(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	for i, item := range a.items {
		if rt.Equal(item, args[0]) {
			return rt.NewNumber(float64(i))
		}
	}
	return rt.NewNumber(-1)
}

func arraySlice(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	start, ok := numberPayload(args[0])
	if !ok {
		return nil
	}
	end := float64(len(a.items))
	if len(args) > 1 {
		if e, ok := numberPayload(args[1]); ok {
			end = e
		}
	}
	lo, hi := clampRange(int(start), int(end), len(a.items))
	result := rt.New(TypeArray, hi-lo)
	for i := lo; i < hi; i++ {
		rt.Call(result, "push", a.items[i])
	}
	return result
}

func arrayJoin(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok {
		return nil
	}
	sep := ","
	if len(args) > 0 {
		if s, ok := stringPayload(args[0]); ok {
			sep = s
		}
	}
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		parts[i] = rt.ToString(item)
	}
	return rt.NewString(strings.Join(parts, sep))
}

func arrayToString(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := arrayPayload(self)
	if !ok {
		return nil
	}
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		parts[i] = rt.ToString(item)
	}
	return rt.NewString("[" + strings.Join(parts, ", ") + "]")
}

func registerArrayType(rt *Runtime) {
	rt.RegisterType("array", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeArray, "length", arrayLength)
			rt.RegisterMethod(TypeArray, "get", arrayGet)
			rt.RegisterMethod(TypeArray, "set", arraySet)
			rt.RegisterMethod(TypeArray, "push", arrayPush)
			rt.RegisterMethod(TypeArray, "pop", arrayPop)
			rt.RegisterMethod(TypeArray, "shift", arrayShift)
			rt.RegisterMethod(TypeArray, "unshift", arrayUnshift)
			rt.RegisterMethod(TypeArray, "indexOf", arrayIndexOf)
			rt.RegisterMethod(TypeArray, "slice", arraySlice)
			rt.RegisterMethod(TypeArray, "join", arrayJoin)
			rt.RegisterMethod(TypeArray, "toString", arrayToString)
		},
		Create:  arrayCreate,
		Destroy: arrayDestroy,
		Mark:    arrayMark,
		Equal:   arrayEqual,
		Flags:   FlagComposite,
	})
}
