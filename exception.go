package xc

import (
	"fmt"
	"os"
	"runtime"
)

// exceptionFrame is one entry on the runtime's frame chain; it exists
// for exactly one dynamic try region. The chain grows at try entry and is
// unlinked before the finally handler runs, so nested throws see the
// correct enclosing frame.
type exceptionFrame struct {
	prev      *exceptionFrame
	exception *Value
	handled   bool
	file      string
	line      int
}

// thrown is the unwind payload. Only the runtime's own recover sites consume
// it; any other panic passes through untouched.
type thrown struct {
	value *Value
}

// Throw raises error through the frame chain. Re-throwing the exact object a
// frame has already caught is refused, which breaks pathological
// re-raise-self loops; use ThrowWithRethrow to bypass the check. With no
// enclosing frame the uncaught-exception handler runs, and absent one the
// error, its stack trace and its cause chain are printed before the process
// aborts.
func (rt *Runtime) Throw(err *Value) {
	rt.throwInternal(err, false)
}

// ThrowWithRethrow is Throw without the re-raise-self protection.
func (rt *Runtime) ThrowWithRethrow(err *Value) {
	rt.throwInternal(err, true)
}

func (rt *Runtime) throwInternal(err *Value, allowRethrow bool) {
	rt.currentError = err

	if f := rt.frame; f != nil {
		if !allowRethrow && f.handled && f.exception == err {
			rt.logExc.Warn("refusing to re-throw an exception its frame already caught")
			return
		}
		f.exception = err
		f.handled = true
		panic(thrown{value: err})
	}

	// Top of the chain: hand the error to the uncaught handler, which runs
	// in an empty exception context. Its return value is discarded.
	if rt.uncaughtHandler != nil {
		rt.Invoke(rt.uncaughtHandler, err)
		return
	}

	rt.logExc.Error("uncaught exception: " + rt.formatError(err))
	fmt.Fprintln(os.Stderr, "Uncaught exception: "+rt.formatError(err))
	rt.printTrace(err)
	rt.abort(1)
}

// Rethrow re-raises the current frame's pending exception. Calling it with
// nothing pending is a fatal runtime error.
func (rt *Runtime) Rethrow() {
	f := rt.frame
	if f == nil || f.exception == nil {
		rt.fatalf("rethrow with no active exception")
		return
	}
	err := f.exception
	f.exception = nil
	rt.ThrowWithRethrow(err)
}

// TryCatchFinally runs tryFn under a fresh exception frame.
//
// A throw inside tryFn lands back here: the error is handed to catchFn (when
// given) and its return value becomes the result; a throw from catchFn
// leaves that new exception pending. The frame is unlinked before finallyFn
// runs, in its own nested frame, so a finally-originated exception is
// observed in the enclosing dynamic context: it replaces the result, and
// when an unhandled prior exception existed and both are exception values
// the prior one becomes its cause. Whatever is still pending at the end is
// re-thrown into the enclosing frame.
func (rt *Runtime) TryCatchFinally(tryFn, catchFn, finallyFn *Value) *Value {
	if !rt.Is(tryFn, TypeFunc) {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	f := &exceptionFrame{prev: rt.frame, file: file, line: line}
	rt.frame = f
	rt.currentError = nil

	rt.stack.Push("try_catch_finally")

	var result, pending *Value
	rt.runTry(f, tryFn, catchFn, &result, &pending)

	// Unlink before finally so the handler runs in the enclosing context.
	rt.frame = f.prev

	if rt.Is(finallyFn, TypeFunc) {
		rt.runFinally(finallyFn, &result, &pending)
	}

	rt.stack.Pop()

	if pending != nil {
		rt.Throw(pending)
		return nil
	}
	return result
}

// runTry executes the try body and, if it throws into this frame, the catch
// handler. A throw out of the catch handler becomes the pending exception.
func (rt *Runtime) runTry(f *exceptionFrame, tryFn, catchFn *Value, result, pending **Value) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(thrown); !ok {
			panic(r)
		}

		err := f.exception
		rt.currentError = nil

		if !rt.Is(catchFn, TypeFunc) {
			*pending = err
			return
		}
		rt.stack.Push("catch_handler")
		defer rt.stack.Pop()
		rt.invokeGuarded(catchFn, []*Value{err}, result, pending)
	}()
	*result = rt.Invoke(tryFn)
}

// runFinally executes the finally handler in a fresh nested frame and folds
// its outcome into the pending result per the cause-chain rule.
func (rt *Runtime) runFinally(finallyFn *Value, result, pending **Value) {
	ff := &exceptionFrame{prev: rt.frame}
	rt.frame = ff
	rt.stack.Push("finally_handler")

	var finallyResult, finallyErr *Value
	rt.invokeGuarded(finallyFn, nil, &finallyResult, &finallyErr)

	rt.stack.Pop()
	rt.frame = ff.prev

	if finallyErr == nil {
		return
	}
	// A finally exception wins. Chain the prior one only if it was still
	// pending; an already-handled exception is gone for good.
	if *pending != nil && rt.Is(finallyErr, TypeException) && rt.Is(*pending, TypeException) {
		rt.Call(finallyErr, "setCause", *pending)
	}
	*pending = finallyErr
	*result = nil
}

// invokeGuarded invokes fn, routing a throw out of it into *errOut instead
// of unwinding further.
func (rt *Runtime) invokeGuarded(fn *Value, args []*Value, result, errOut **Value) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		t, ok := r.(thrown)
		if !ok {
			panic(r)
		}
		rt.currentError = nil
		*errOut = t.value
	}()
	*result = rt.Invoke(fn, args...)
}

// SetUncaughtExceptionHandler installs the value invoked when an exception
// reaches the top of the frame chain. Pass nil to restore the default
// print-and-abort behavior.
func (rt *Runtime) SetUncaughtExceptionHandler(handler *Value) {
	rt.uncaughtHandler = handler
}

// GetCurrentError returns the most recently thrown error that no frame has
// consumed yet. This is a polling surface: the slot is set on every throw,
// cleared when a frame catches, and left set after the uncaught handler runs.
func (rt *Runtime) GetCurrentError() *Value {
	return rt.currentError
}

// ClearError empties the current-error slot.
func (rt *Runtime) ClearError() {
	rt.currentError = nil
}

// printTrace writes an exception's stack trace and cause chain to stderr.
func (rt *Runtime) printTrace(err *Value) {
	e, ok := exceptionPayload(err)
	if !ok {
		return
	}
	fmt.Fprintln(os.Stderr, "Stack trace:")
	for _, entry := range e.trace {
		fmt.Fprintf(os.Stderr, "  at %s (%s:%d)\n", entry.Function, entry.File, entry.Line)
	}
	seen := map[*Value]bool{err: true}
	for cause := e.cause; cause != nil && !seen[cause]; {
		seen[cause] = true
		fmt.Fprintln(os.Stderr, "Caused by: "+rt.formatError(cause))
		c, ok := exceptionPayload(cause)
		if !ok {
			break
		}
		cause = c.cause
	}
}

// formatError renders an error value as "TypeName: message" for exceptions
// and falls back to ToString for anything else.
func (rt *Runtime) formatError(err *Value) string {
	if e, ok := exceptionPayload(err); ok {
		return e.kind.String() + ": " + e.message
	}
	return rt.ToString(err)
}
