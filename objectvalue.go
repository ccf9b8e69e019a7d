package xc

import (
	"sort"
	"unsafe"
)

// objectData is the payload of generic object values: a property map plus an
// optional prototype consulted on reads.
type objectData struct {
	props     map[string]*Value
	prototype *Value
}

func objectPayload(v *Value) (*objectData, bool) {
	if v == nil || v.typ.ID != TypeObject {
		return nil, false
	}
	o, ok := v.data.(*objectData)
	return o, ok
}

// NewObject creates an empty object value.
func (rt *Runtime) NewObject() *Value {
	return rt.New(TypeObject)
}

// objectAt reads a property, following the prototype chain.
func objectAt(v *Value, key string) *Value {
	for v != nil {
		o, ok := objectPayload(v)
		if !ok {
			return nil
		}
		if val, ok := o.props[key]; ok {
			return val
		}
		v = o.prototype
	}
	return nil
}

// objectPut writes a property on the object itself.
func objectPut(v *Value, key string, value *Value) {
	if o, ok := objectPayload(v); ok {
		o.props[key] = value
	}
}

func objectCreate(rt *Runtime, args []any) *Value {
	v := rt.AllocObject(TypeObject, int(unsafe.Sizeof(objectData{})))
	if v == nil {
		return nil
	}
	v.data = &objectData{props: make(map[string]*Value)}
	return v
}

func objectDestroy(rt *Runtime, v *Value) {
	if o, ok := objectPayload(v); ok {
		o.props = nil
		o.prototype = nil
	}
}

func objectMark(v *Value, mark MarkFunc) {
	o, ok := objectPayload(v)
	if !ok {
		return
	}
	for _, val := range o.props {
		if val != nil {
			mark(val)
		}
	}
	if o.prototype != nil {
		mark(o.prototype)
	}
}

func objectEqual(rt *Runtime, a, b *Value) bool {
	return a == b
}

// sortedKeys gives the property methods a deterministic order; the map
// itself does not have one.
func (o *objectData) sortedKeys() []string {
	keys := make([]string, 0, len(o.props))
	for k := range o.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func objectGet(rt *Runtime, self *Value, args ...*Value) *Value {
	if len(args) == 0 {
		return nil
	}
	key, ok := stringPayload(args[0])
	if !ok {
		return nil
	}
	return objectAt(self, key)
}

func objectSet(rt *Runtime, self *Value, args ...*Value) *Value {
	if len(args) < 2 {
		return nil
	}
	key, ok := stringPayload(args[0])
	if !ok {
		return nil
	}
	objectPut(self, key, args[1])
	return args[1]
}

func objectHas(rt *Runtime, self *Value, args ...*Value) *Value {
	o, ok := objectPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	key, kok := stringPayload(args[0])
	if !kok {
		return nil
	}
	_, present := o.props[key]
	return rt.NewBool(present)
}

func objectDelete(rt *Runtime, self *Value, args ...*Value) *Value {
	o, ok := objectPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	key, kok := stringPayload(args[0])
	if !kok {
		return nil
	}
	_, present := o.props[key]
	delete(o.props, key)
	return rt.NewBool(present)
}

func objectKeys(rt *Runtime, self *Value, args ...*Value) *Value {
	o, ok := objectPayload(self)
	if !ok {
		return nil
	}
	arr := rt.New(TypeArray, len(o.props))
	for _, k := range o.sortedKeys() {
		key := rt.NewString(k)
		rt.Call(arr, "push", key)
		rt.dropRef(key)
	}
	return arr
}

func objectValues(rt *Runtime, self *Value, args ...*Value) *Value {
	o, ok := objectPayload(self)
	if !ok {
		return nil
	}
	arr := rt.New(TypeArray, len(o.props))
	for _, k := range o.sortedKeys() {
		rt.Call(arr, "push", o.props[k])
	}
	return arr
}

func objectEntries(rt *Runtime, self *Value, args ...*Value) *Value {
	o, ok := objectPayload(self)
	if !ok {
		return nil
	}
	arr := rt.New(TypeArray, len(o.props))
	for _, k := range o.sortedKeys() {
		key := rt.NewString(k)
		entry := rt.NewArray(key, o.props[k])
		rt.Call(arr, "push", entry)
		rt.dropRef(key)
		rt.dropRef(entry)
	}
	return arr
}

func objectToString(rt *Runtime, self *Value, args ...*Value) *Value {
	if _, ok := objectPayload(self); !ok {
		return nil
	}
	return rt.NewString("[object]")
}

func registerObjectType(rt *Runtime) {
	rt.RegisterType("object", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeObject, "get", objectGet)
			rt.RegisterMethod(TypeObject, "set", objectSet)
			rt.RegisterMethod(TypeObject, "has", objectHas)
			rt.RegisterMethod(TypeObject, "delete", objectDelete)
			rt.RegisterMethod(TypeObject, "keys", objectKeys)
			rt.RegisterMethod(TypeObject, "values", objectValues)
			rt.RegisterMethod(TypeObject, "entries", objectEntries)
			rt.RegisterMethod(TypeObject, "toString", objectToString)
		},
		Create:  objectCreate,
		Destroy: objectDestroy,
		Mark:    objectMark,
		Equal:   objectEqual,
		Flags:   FlagComposite,
	})
}
