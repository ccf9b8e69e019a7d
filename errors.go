package xc

import (
	"fmt"
	"unsafe"

	"github.com/xc-lang/xc/internal/trace"
)

// ExceptionKind tags an exception value with its category.
type ExceptionKind int

const (
	KindError ExceptionKind = iota
	KindSyntaxError
	KindTypeError
	KindReferenceError
	KindRangeError
	KindMemoryError
	KindInternalError
)

// KindUser is the first kind available for host-defined exception
// categories.
const KindUser ExceptionKind = 100

func (k ExceptionKind) String() string {
	switch k {
	case KindError:
		return "Error"
	case KindSyntaxError:
		return "SyntaxError"
	case KindTypeError:
		return "TypeError"
	case KindReferenceError:
		return "ReferenceError"
	case KindRangeError:
		return "RangeError"
	case KindMemoryError:
		return "MemoryError"
	case KindInternalError:
		return "InternalError"
	default:
		return "UserError"
	}
}

// exceptionData is the exception payload: kind tag, message, the logical
// stack trace captured at creation time, and an optional cause forming a
// chain.
type exceptionData struct {
	kind    ExceptionKind
	message string
	trace   []trace.Entry
	cause   *Value
}

func exceptionPayload(v *Value) (*exceptionData, bool) {
	if v == nil || v.typ == nil || v.typ.ID != TypeException {
		return nil, false
	}
	e, ok := v.data.(*exceptionData)
	return e, ok
}

// Exception creation goes through the registry like every other type;
// creator args are (kind, message[, cause]).
func exceptionCreate(rt *Runtime, args []any) *Value {
	v := rt.AllocObject(TypeException, int(unsafe.Sizeof(exceptionData{})))
	if v == nil {
		return nil
	}
	e := &exceptionData{kind: KindError}
	if len(args) > 0 {
		switch k := args[0].(type) {
		case ExceptionKind:
			e.kind = k
		case int:
			e.kind = ExceptionKind(k)
		}
	}
	if len(args) > 1 {
		if msg, ok := args[1].(string); ok {
			e.message = msg
		}
	}
	if len(args) > 2 {
		if cause, ok := args[2].(*Value); ok {
			e.cause = cause
		}
	}
	// The trace is a copy of the logical frame chain as it stands right
	// now; no host stack walking happens here.
	e.trace = rt.stack.Capture()
	v.data = e
	return v
}

func exceptionDestroy(rt *Runtime, v *Value) {
	if e, ok := exceptionPayload(v); ok {
		e.trace = nil
		e.cause = nil
	}
}

func exceptionMark(v *Value, mark MarkFunc) {
	if e, ok := exceptionPayload(v); ok && e.cause != nil {
		mark(e.cause)
	}
}

func exceptionEqual(rt *Runtime, a, b *Value) bool {
	return a == b
}

func exceptionToString(rt *Runtime, self *Value, args ...*Value) *Value {
	e, ok := exceptionPayload(self)
	if !ok {
		return nil
	}
	return rt.New(TypeString, e.kind.String()+": "+e.message)
}

func exceptionGetCode(rt *Runtime, self *Value, args ...*Value) *Value {
	e, ok := exceptionPayload(self)
	if !ok {
		return nil
	}
	return rt.New(TypeNumber, float64(e.kind))
}

func exceptionGetMessage(rt *Runtime, self *Value, args ...*Value) *Value {
	e, ok := exceptionPayload(self)
	if !ok {
		return nil
	}
	return rt.New(TypeString, e.message)
}

// getStackTrace renders the captured frames as an array of
// "function (file:line)" strings.
func exceptionGetStackTrace(rt *Runtime, self *Value, args ...*Value) *Value {
	e, ok := exceptionPayload(self)
	if !ok {
		return nil
	}
	arr := rt.New(TypeArray)
	for _, entry := range e.trace {
		line := rt.New(TypeString, formatTraceEntry(entry))
		rt.Call(arr, "push", line)
		rt.dropRef(line)
	}
	return arr
}

func exceptionSetStackTrace(rt *Runtime, self *Value, args ...*Value) *Value {
	// The captured trace is canonical; replacing it wholesale is not
	// supported, only clearing.
	if e, ok := exceptionPayload(self); ok && len(args) == 0 {
		e.trace = nil
	}
	return self
}

func exceptionGetCause(rt *Runtime, self *Value, args ...*Value) *Value {
	e, ok := exceptionPayload(self)
	if !ok {
		return nil
	}
	return e.cause
}

func exceptionSetCause(rt *Runtime, self *Value, args ...*Value) *Value {
	e, ok := exceptionPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	e.cause = args[0]
	return self
}

func registerExceptionType(rt *Runtime) {
	rt.RegisterType("exception", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeException, "toString", exceptionToString)
			rt.RegisterMethod(TypeException, "getCode", exceptionGetCode)
			rt.RegisterMethod(TypeException, "getMessage", exceptionGetMessage)
			rt.RegisterMethod(TypeException, "getStackTrace", exceptionGetStackTrace)
			rt.RegisterMethod(TypeException, "setStackTrace", exceptionSetStackTrace)
			rt.RegisterMethod(TypeException, "getCause", exceptionGetCause)
			rt.RegisterMethod(TypeException, "setCause", exceptionSetCause)
		},
		Create:  exceptionCreate,
		Destroy: exceptionDestroy,
		Mark:    exceptionMark,
		Equal:   exceptionEqual,
		Flags:   FlagInternal,
	})
}

// Convenience factories, one per built-in kind.

// NewError creates a generic Error exception.
func (rt *Runtime) NewError(message string) *Value {
	return rt.New(TypeException, KindError, message)
}

// NewSyntaxError creates a SyntaxError exception.
func (rt *Runtime) NewSyntaxError(message string) *Value {
	return rt.New(TypeException, KindSyntaxError, message)
}

// NewTypeError creates a TypeError exception.
func (rt *Runtime) NewTypeError(message string) *Value {
	return rt.New(TypeException, KindTypeError, message)
}

// NewReferenceError creates a ReferenceError exception.
func (rt *Runtime) NewReferenceError(message string) *Value {
	return rt.New(TypeException, KindReferenceError, message)
}

// NewRangeError creates a RangeError exception.
func (rt *Runtime) NewRangeError(message string) *Value {
	return rt.New(TypeException, KindRangeError, message)
}

// NewMemoryError creates a MemoryError exception.
func (rt *Runtime) NewMemoryError(message string) *Value {
	return rt.New(TypeException, KindMemoryError, message)
}

// NewInternalError creates an InternalError exception.
func (rt *Runtime) NewInternalError(message string) *Value {
	return rt.New(TypeException, KindInternalError, message)
}

// NewErrorWithCause creates an Error whose cause chain starts at cause.
func (rt *Runtime) NewErrorWithCause(message string, cause *Value) *Value {
	return rt.New(TypeException, KindError, message, cause)
}

// ExceptionKindOf returns the kind tag of an exception value, or KindError
// and false for non-exceptions.
func (rt *Runtime) ExceptionKindOf(v *Value) (ExceptionKind, bool) {
	e, ok := exceptionPayload(v)
	if !ok {
		return KindError, false
	}
	return e.kind, true
}

// ExceptionMessage returns the message of an exception value.
func (rt *Runtime) ExceptionMessage(v *Value) string {
	e, ok := exceptionPayload(v)
	if !ok {
		return ""
	}
	return e.message
}

// ExceptionCause returns the cause of an exception value, nil when unset.
func (rt *Runtime) ExceptionCause(v *Value) *Value {
	e, ok := exceptionPayload(v)
	if !ok {
		return nil
	}
	return e.cause
}

// ExceptionTrace returns a copy of the captured logical stack trace.
func (rt *Runtime) ExceptionTrace(v *Value) []trace.Entry {
	e, ok := exceptionPayload(v)
	if !ok {
		return nil
	}
	out := make([]trace.Entry, len(e.trace))
	copy(out, e.trace)
	return out
}

func formatTraceEntry(e trace.Entry) string {
	return fmt.Sprintf("%s (%s:%d)", e.Function, e.File, e.Line)
}
