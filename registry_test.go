package xc

import "testing"

// TestCoreTypeIDs pins the documented stable ids.
func TestCoreTypeIDs(t *testing.T) {
	rt := newTestRuntime(t)

	want := map[string]TypeID{
		"null":      2,
		"boolean":   3,
		"number":    4,
		"string":    5,
		"exception": 6,
		"function":  7,
		"array":     8,
		"object":    9,
		"vm":        10,
	}
	for name, id := range want {
		if got := rt.GetTypeID(name); got != id {
			t.Errorf("GetTypeID(%q) = %d, want %d", name, got, id)
		}
	}
}

// TestRegisterTypeIdempotent verifies that registering a known name returns
// the existing id and does not replace the stored lifecycle.
func TestRegisterTypeIdempotent(t *testing.T) {
	rt := newTestRuntime(t)

	initCount := 0
	lc := Lifecycle{
		Initializer: func(rt *Runtime) { initCount++ },
		Create: func(rt *Runtime, args []any) *Value {
			return rt.AllocObject(rt.GetTypeID("point"), 16)
		},
	}
	id1, err := rt.RegisterType("point", lc)
	if err != nil {
		t.Fatalf("RegisterType failed: %v", err)
	}
	id2, err := rt.RegisterType("point", Lifecycle{
		Initializer: func(rt *Runtime) { t.Error("second lifecycle initializer ran") },
	})
	if err != nil {
		t.Fatalf("re-registration failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("re-registration returned %d, want %d", id2, id1)
	}
	if initCount != 1 {
		t.Errorf("initializer ran %d times, want 1", initCount)
	}
}

// TestTypeIDRanges checks the range assignment per name prefix.
func TestTypeIDRanges(t *testing.T) {
	rt := newTestRuntime(t)

	t.Run("User", func(t *testing.T) {
		id, err := rt.RegisterType("widget", Lifecycle{})
		if err != nil {
			t.Fatal(err)
		}
		if id < TypeUserBegin || id > TypeUserEnd {
			t.Errorf("user type id %d outside [%d,%d]", id, TypeUserBegin, TypeUserEnd)
		}
	})

	t.Run("Internal", func(t *testing.T) {
		id, err := rt.RegisterType("internal.iterator", Lifecycle{})
		if err != nil {
			t.Fatal(err)
		}
		if id < TypeInternalBegin || id > TypeInternalEnd {
			t.Errorf("internal type id %d outside [%d,%d]", id, TypeInternalBegin, TypeInternalEnd)
		}
	})

	t.Run("Extension", func(t *testing.T) {
		id, err := rt.RegisterExtension("ext.buffer", "", Lifecycle{})
		if err != nil {
			t.Fatal(err)
		}
		if id < TypeExtensionBegin || id > TypeExtensionEnd {
			t.Errorf("extension type id %d outside [%d,%d]", id, TypeExtensionBegin, TypeExtensionEnd)
		}
	})

	t.Run("DistinctIDs", func(t *testing.T) {
		a, _ := rt.RegisterType("alpha", Lifecycle{})
		b, _ := rt.RegisterType("beta", Lifecycle{})
		if a == b {
			t.Errorf("distinct names got the same id %d", a)
		}
	})
}

// TestRegisterExtensionVersionGate checks the semver constraint on
// extension registration.
func TestRegisterExtensionVersionGate(t *testing.T) {
	rt := newTestRuntime(t)

	if _, err := rt.RegisterExtension("ext.ok", ">= 1.0.0", Lifecycle{}); err != nil {
		t.Errorf("satisfiable constraint rejected: %v", err)
	}
	if _, err := rt.RegisterExtension("ext.future", ">= 99.0.0", Lifecycle{}); err == nil {
		t.Error("unsatisfiable constraint accepted")
	}
	if _, err := rt.RegisterExtension("noprefix", "", Lifecycle{}); err == nil {
		t.Error("extension without ext. prefix accepted")
	}
	if _, err := rt.RegisterExtension("ext.bad", "not-a-range", Lifecycle{}); err == nil {
		t.Error("malformed constraint accepted")
	}
}

// TestMethodRegistration covers lookup and intentional shadowing.
func TestMethodRegistration(t *testing.T) {
	rt := newTestRuntime(t)

	id, err := rt.RegisterType("gadget", Lifecycle{})
	if err != nil {
		t.Fatal(err)
	}

	first := func(rt *Runtime, self *Value, args ...*Value) *Value {
		return rt.NewString("first")
	}
	second := func(rt *Runtime, self *Value, args ...*Value) *Value {
		return rt.NewString("second")
	}

	if !rt.RegisterMethod(id, "describe", first) {
		t.Fatal("method registration failed")
	}
	if rt.FindMethod(id, "describe") == nil {
		t.Fatal("registered method not found")
	}
	if rt.FindMethod(id, "missing") != nil {
		t.Error("lookup of unknown method should be nil")
	}

	// Later registrations shadow earlier ones.
	rt.RegisterMethod(id, "describe", second)
	got := rt.FindMethod(id, "describe")(rt, nil)
	if rt.StringValue(got) != "second" {
		t.Errorf("shadowed method returned %q, want %q", rt.StringValue(got), "second")
	}

	if rt.RegisterMethod(TypeID(250), "x", first) {
		t.Error("registration against unknown type should fail")
	}
	if rt.RegisterMethod(id, "", first) {
		t.Error("registration with empty name should fail")
	}
}

// TestNewWithRegisteredType runs a user type through the full create/verify
// path.
func TestNewWithRegisteredType(t *testing.T) {
	rt := newTestRuntime(t)

	id, err := rt.RegisterType("counter", Lifecycle{
		Create: func(rt *Runtime, args []any) *Value {
			v := rt.AllocObject(rt.GetTypeID("counter"), 8)
			if v == nil {
				return nil
			}
			v.data = new(int)
			return v
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	v := rt.New(id)
	if v == nil {
		t.Fatal("New returned nil for registered type")
	}
	if !rt.Is(v, id) {
		t.Error("Is(New(type), type) must hold")
	}
	if rt.TypeOf(v) != id {
		t.Error("TypeOf(New(type)) must equal type")
	}
}
