package xc

import "unsafe"

// The vm type is a stub holding its reserved core id. It is registered and
// allocatable so the id range stays claimed; its only behavior is a
// toString that renders "[vm]".

type vmData struct{}

func vmCreate(rt *Runtime, args []any) *Value {
	v := rt.AllocObject(TypeVM, int(unsafe.Sizeof(vmData{})))
	if v == nil {
		return nil
	}
	v.data = &vmData{}
	return v
}

func vmToString(rt *Runtime, self *Value, args ...*Value) *Value {
	return rt.NewString("[vm]")
}

func registerVMType(rt *Runtime) {
	rt.RegisterType("vm", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeVM, "toString", vmToString)
		},
		Create: vmCreate,
		Flags:  FlagInternal,
	})
}
