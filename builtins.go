package xc

// registerBuiltins installs the core type suite. Registration order follows
// the dependency order of the subsystems: primitives first, then the
// composites and callables that reference them.
func registerBuiltins(rt *Runtime) {
	registerNullType(rt)
	registerBooleanType(rt)
	registerNumberType(rt)
	registerStringType(rt)
	registerExceptionType(rt)
	registerFunctionType(rt)
	registerArrayType(rt)
	registerObjectType(rt)
	registerVMType(rt)
}
