package xc

// Call looks up method on the receiver's type and invokes it with args.
// A logical frame named "TypeName.method" is pushed around the native call
// so exception traces can see it. Returns nil when the receiver is nil or
// the method does not exist; raising a TypeError for that is the caller's
// decision.
func (rt *Runtime) Call(obj *Value, method string, args ...*Value) *Value {
	if obj == nil || method == "" {
		return nil
	}
	fn := rt.FindMethod(obj.TypeID(), method)
	if fn == nil {
		return nil
	}

	rt.stack.Push(obj.typ.Name + "." + method)
	defer rt.stack.Pop()
	return fn(rt, obj, args...)
}

// Dot is the dual-use property accessor.
//
// With a value argument it is a set: a type-specific "set_<key>" method wins,
// then the generic "set" method (called with the key string and the value),
// then a direct property write on object values. The written value is
// returned.
//
// Without a value it is a get: "get_<key>" first, then <key> as a method
// (returned as a callable bound to obj), then the generic "get", then a
// direct property read on object values. This ordering lets types intercept
// property access with getter/setter methods while keeping default
// object-literal behavior.
func (rt *Runtime) Dot(obj *Value, key string, value ...*Value) *Value {
	if obj == nil || key == "" {
		return nil
	}
	id := obj.TypeID()

	if len(value) > 0 {
		val := value[0]
		if setter := rt.FindMethod(id, "set_"+key); setter != nil {
			setter(rt, obj, val)
			return val
		}
		if setter := rt.FindMethod(id, "set"); setter != nil {
			keyVal := rt.New(TypeString, key)
			setter(rt, obj, keyVal, val)
			rt.dropRef(keyVal)
			return val
		}
		if id == TypeObject {
			objectPut(obj, key, val)
			return val
		}
		return val
	}

	if getter := rt.FindMethod(id, "get_"+key); getter != nil {
		return getter(rt, obj)
	}
	if m := rt.FindMethod(id, key); m != nil {
		return rt.bindMethod(obj, key, m)
	}
	if getter := rt.FindMethod(id, "get"); getter != nil {
		keyVal := rt.New(TypeString, key)
		result := getter(rt, obj, keyVal)
		rt.dropRef(keyVal)
		return result
	}
	if id == TypeObject {
		return objectAt(obj, key)
	}
	return nil
}

// bindMethod wraps a native method as a callable function value whose
// receiver is fixed to obj.
func (rt *Runtime) bindMethod(obj *Value, name string, m Method) *Value {
	handler := NativeFunc(func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
		return m(rt, closure, args...)
	})
	return rt.New(TypeFunc, handler, -1, obj, obj.typ.Name+"."+name)
}

// Invoke calls a function value with the given arguments. The logical frame
// is labeled with the function's name attribute, or "anonymous" when it has
// none. Non-function values yield nil.
func (rt *Runtime) Invoke(fn *Value, args ...*Value) *Value {
	f, ok := functionPayload(fn)
	if !ok || f.handler == nil {
		return nil
	}

	name := f.name
	if name == "" {
		name = "anonymous"
	}
	rt.stack.Push(name)
	defer rt.stack.Pop()

	return f.handler(rt, f.this, args, f.closure)
}
