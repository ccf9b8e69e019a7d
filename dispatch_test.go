package xc

import "testing"

// TestCall covers method dispatch through the registry.
func TestCall(t *testing.T) {
	rt := newTestRuntime(t)

	t.Run("KnownMethod", func(t *testing.T) {
		n := rt.NewNumber(2)
		sum := rt.Call(n, "add", rt.NewNumber(3))
		if got := rt.NumberValue(sum); got != 5 {
			t.Errorf("2.add(3) = %g, want 5", got)
		}
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		n := rt.NewNumber(1)
		if rt.Call(n, "frobnicate") != nil {
			t.Error("unknown method should return nil")
		}
	})

	t.Run("NilReceiver", func(t *testing.T) {
		if rt.Call(nil, "toString") != nil {
			t.Error("nil receiver should return nil")
		}
	})
}

// TestDotGet covers the getter resolution order: get_<key>, method as bound
// callable, generic get, then direct property.
func TestDotGet(t *testing.T) {
	rt := newTestRuntime(t)

	t.Run("SpecificGetterWins", func(t *testing.T) {
		// Functions expose get_name; the name attribute resolves there.
		fn := rt.NewFunction("picked", 0, nil,
			func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value { return nil })
		name := rt.Dot(fn, "name")
		if got := rt.StringValue(name); got != "picked" {
			t.Errorf("function name = %q, want %q", got, "picked")
		}
	})

	t.Run("MethodAsBoundCallable", func(t *testing.T) {
		n := rt.NewNumber(8)
		bound := rt.Dot(n, "sqrt")
		if !rt.Is(bound, TypeFunc) {
			t.Fatal("method lookup through dot should yield a callable")
		}
		// Invoking with no arguments applies sqrt to the bound receiver 8.
		result := rt.Invoke(bound)
		if got := rt.NumberValue(result); got*got < 7.99 || got*got > 8.01 {
			t.Errorf("bound sqrt returned %g", got)
		}
	})

	t.Run("DirectProperty", func(t *testing.T) {
		obj := rt.NewObject()
		val := rt.NewString("stored")
		rt.Dot(obj, "field", val)
		got := rt.Dot(obj, "field")
		if got != val {
			t.Error("direct property read did not return the stored value")
		}
	})

	t.Run("MissingProperty", func(t *testing.T) {
		obj := rt.NewObject()
		if rt.Dot(obj, "absent") != nil {
			t.Error("missing property should read as nil")
		}
	})
}

// TestDotSet covers the setter resolution order and the returned value.
func TestDotSet(t *testing.T) {
	rt := newTestRuntime(t)

	t.Run("ReturnsWrittenValue", func(t *testing.T) {
		obj := rt.NewObject()
		val := rt.NewNumber(7)
		if got := rt.Dot(obj, "n", val); got != val {
			t.Error("set should return the written value")
		}
	})

	t.Run("SpecificSetterWins", func(t *testing.T) {
		id, err := rt.RegisterType("guarded", Lifecycle{
			Create: func(rt *Runtime, args []any) *Value {
				v := rt.AllocObject(rt.GetTypeID("guarded"), 8)
				if v != nil {
					v.data = &struct{ hits int }{}
				}
				return v
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		hit := false
		rt.RegisterMethod(id, "set_locked", func(rt *Runtime, self *Value, args ...*Value) *Value {
			hit = true
			if len(args) == 0 {
				return nil
			}
			return args[0]
		})
		v := rt.New(id)
		rt.Dot(v, "locked", rt.NewBool(true))
		if !hit {
			t.Error("set_<key> method was not preferred")
		}
	})
}

// TestInvoke covers function invocation, arity-free calling and the logical
// frame label.
func TestInvoke(t *testing.T) {
	rt := newTestRuntime(t)

	t.Run("PassesArguments", func(t *testing.T) {
		fn := rt.NewFunction("sum", 2, nil,
			func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
				total := 0.0
				for _, a := range args {
					total += rt.NumberValue(a)
				}
				return rt.NewNumber(total)
			})
		out := rt.Invoke(fn, rt.NewNumber(1), rt.NewNumber(2), rt.NewNumber(3))
		if got := rt.NumberValue(out); got != 6 {
			t.Errorf("sum = %g, want 6", got)
		}
	})

	t.Run("ClosureDelivered", func(t *testing.T) {
		env := rt.NewString("environment")
		fn := rt.NewFunction("reader", 0, env,
			func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
				return closure
			})
		if rt.Invoke(fn) != env {
			t.Error("closure value not delivered to handler")
		}
	})

	t.Run("FrameLabel", func(t *testing.T) {
		var captured *Value
		fn := rt.NewFunction("labeled", 0, nil,
			func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
				captured = rt.NewError("probe")
				return nil
			})
		rt.Invoke(fn)
		entries := rt.ExceptionTrace(captured)
		if len(entries) == 0 || entries[0].Function != "labeled" {
			t.Errorf("trace head = %+v, want function %q", entries, "labeled")
		}
	})

	t.Run("NonFunction", func(t *testing.T) {
		if rt.Invoke(rt.NewNumber(1)) != nil {
			t.Error("invoking a non-function should return nil")
		}
		if rt.Invoke(nil) != nil {
			t.Error("invoking null should return nil")
		}
	})

	t.Run("BoundThis", func(t *testing.T) {
		this := rt.NewObject()
		fn := rt.NewFunction("method", 0, nil,
			func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
				return this
			})
		rt.Call(fn, "bind", this)
		if rt.Invoke(fn) != this {
			t.Error("bound this not delivered")
		}
	})
}

// TestStackDepthBalanced verifies that every dispatch path pops the frames
// it pushes, including across thrown exceptions.
func TestStackDepthBalanced(t *testing.T) {
	rt := newTestRuntime(t)

	depth := rt.stack.Depth()

	rt.Call(rt.NewNumber(1), "toString")
	rt.Invoke(rt.NewFunction("noop", 0, nil,
		func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value { return nil }))

	tryFn := rt.NewFunction("thrower", 0, nil,
		func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
			rt.Throw(rt.NewError("boom"))
			return nil
		})
	rt.TryCatchFinally(tryFn, rt.NewFunction("swallow", 1, nil,
		func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value { return nil }), nil)

	if got := rt.stack.Depth(); got != depth {
		t.Errorf("stack depth %d after dispatch, want %d", got, depth)
	}
}
