package xc

import "unsafe"

// NativeFunc is the handler behind every function value. this is the bound
// receiver (nil unless bound), args the caller's arguments and closure the
// opaque environment value the function was created with.
type NativeFunc func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value

type functionData struct {
	handler NativeFunc
	name    string
	arity   int // -1 for variadic
	this    *Value
	closure *Value
}

func functionPayload(v *Value) (*functionData, bool) {
	if v == nil || v.typ.ID != TypeFunc {
		return nil, false
	}
	f, ok := v.data.(*functionData)
	return f, ok
}

// NewFunction creates a named function value. Pass arity -1 for variadic and
// a nil closure when the handler needs no environment.
func (rt *Runtime) NewFunction(name string, arity int, closure *Value, handler NativeFunc) *Value {
	return rt.New(TypeFunc, handler, arity, closure, name)
}

// Creator args: handler, arity, closure, optional name.
func functionCreate(rt *Runtime, args []any) *Value {
	if len(args) == 0 {
		return nil
	}
	handler, ok := args[0].(NativeFunc)
	if !ok {
		if plain, isPlain := args[0].(func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value); isPlain {
			handler = plain
		} else {
			return nil
		}
	}
	if handler == nil {
		return nil
	}
	v := rt.AllocObject(TypeFunc, int(unsafe.Sizeof(functionData{})))
	if v == nil {
		return nil
	}
	f := &functionData{handler: handler, arity: -1}
	if len(args) > 1 {
		if n, ok := args[1].(int); ok {
			f.arity = n
		}
	}
	if len(args) > 2 {
		if c, ok := args[2].(*Value); ok {
			f.closure = c
		}
	}
	if len(args) > 3 {
		if name, ok := args[3].(string); ok {
			f.name = name
		}
	}
	v.data = f
	return v
}

func functionDestroy(rt *Runtime, v *Value) {
	if f, ok := functionPayload(v); ok {
		f.closure = nil
		f.this = nil
		f.handler = nil
	}
}

func functionMark(v *Value, mark MarkFunc) {
	f, ok := functionPayload(v)
	if !ok {
		return
	}
	if f.closure != nil {
		mark(f.closure)
	}
	if f.this != nil {
		mark(f.this)
	}
}

func functionEqual(rt *Runtime, a, b *Value) bool {
	return a == b
}

func functionToString(rt *Runtime, self *Value, args ...*Value) *Value {
	f, ok := functionPayload(self)
	if !ok {
		return nil
	}
	if f.name == "" {
		return rt.NewString("function")
	}
	return rt.NewString("function " + f.name)
}

func functionInvoke(rt *Runtime, self *Value, args ...*Value) *Value {
	return rt.Invoke(self, args...)
}

func functionBind(rt *Runtime, self *Value, args ...*Value) *Value {
	f, ok := functionPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	f.this = args[0]
	return self
}

func functionGetName(rt *Runtime, self *Value, args ...*Value) *Value {
	f, ok := functionPayload(self)
	if !ok {
		return nil
	}
	return rt.NewString(f.name)
}

func registerFunctionType(rt *Runtime) {
	rt.RegisterType("function", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeFunc, "toString", functionToString)
			rt.RegisterMethod(TypeFunc, "invoke", functionInvoke)
			rt.RegisterMethod(TypeFunc, "bind", functionBind)
			rt.RegisterMethod(TypeFunc, "get_name", functionGetName)
		},
		Create:  functionCreate,
		Destroy: functionDestroy,
		Mark:    functionMark,
		Equal:   functionEqual,
		Flags:   FlagCallable,
	})
}
