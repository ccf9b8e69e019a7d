package xc

// The null type is special: the null value IS the nil handle. TypeOf(nil)
// reports TypeNull and Is(nil, TypeNull) holds, so the creator hands back
// nil rather than allocating anything. Because the dispatch layer refuses a
// nil receiver, the null methods are reached through the Runtime facade
// (IsNull, ToString); they are still registered so FindMethod resolves them
// for callers routing through the registry.

func nullCreate(rt *Runtime, args []any) *Value {
	return nil
}

func nullEqual(rt *Runtime, a, b *Value) bool {
	return a == nil && b == nil
}

func nullToString(rt *Runtime, self *Value, args ...*Value) *Value {
	return rt.NewString("null")
}

func nullIsNull(rt *Runtime, self *Value, args ...*Value) *Value {
	return rt.NewBool(self == nil)
}

// IsNull reports whether v is the null value. The facade counterpart of the
// registered isNull method, since a nil receiver never reaches Call.
func (rt *Runtime) IsNull(v *Value) bool {
	return v == nil
}

func registerNullType(rt *Runtime) {
	rt.RegisterType("null", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeNull, "toString", nullToString)
			rt.RegisterMethod(TypeNull, "isNull", nullIsNull)
		},
		Create: nullCreate,
		Equal:  nullEqual,
		Flags:  FlagPrimitive,
	})
}
