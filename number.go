package xc

import (
	"math"
	"strconv"
	"unsafe"
)

type numberData struct {
	value float64
}

func numberPayload(v *Value) (float64, bool) {
	if v == nil || v.typ.ID != TypeNumber {
		return 0, false
	}
	n, ok := v.data.(*numberData)
	if !ok {
		return 0, false
	}
	return n.value, true
}

// NewNumber creates a number value.
func (rt *Runtime) NewNumber(f float64) *Value {
	return rt.New(TypeNumber, f)
}

// NumberValue extracts the payload of a number value; 0 for anything else.
func (rt *Runtime) NumberValue(v *Value) float64 {
	f, _ := numberPayload(v)
	return f
}

func numberCreate(rt *Runtime, args []any) *Value {
	v := rt.AllocObject(TypeNumber, int(unsafe.Sizeof(numberData{})))
	if v == nil {
		return nil
	}
	var value float64
	if len(args) > 0 {
		switch x := args[0].(type) {
		case float64:
			value = x
		case float32:
			value = float64(x)
		case int:
			value = float64(x)
		case int64:
			value = float64(x)
		}
	}
	v.data = &numberData{value: value}
	return v
}

func numberEqual(rt *Runtime, a, b *Value) bool {
	av, aok := numberPayload(a)
	bv, bok := numberPayload(b)
	return aok && bok && av == bv
}

func numberCompare(rt *Runtime, a, b *Value) int {
	av, _ := numberPayload(a)
	bv, _ := numberPayload(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func numberToString(rt *Runtime, self *Value, args ...*Value) *Value {
	f, ok := numberPayload(self)
	if !ok {
		return nil
	}
	return rt.New(TypeString, formatNumber(f))
}

// binaryNumberOp factors the shape shared by the arithmetic methods: both
// operands must be numbers, the result is a fresh number value.
func binaryNumberOp(op func(a, b float64) float64) Method {
	return func(rt *Runtime, self *Value, args ...*Value) *Value {
		a, ok := numberPayload(self)
		if !ok || len(args) == 0 {
			return nil
		}
		b, ok := numberPayload(args[0])
		if !ok {
			return nil
		}
		return rt.NewNumber(op(a, b))
	}
}

func numberDivide(rt *Runtime, self *Value, args ...*Value) *Value {
	a, ok := numberPayload(self)
	if !ok || len(args) == 0 {
		return nil
	}
	b, ok := numberPayload(args[0])
	if !ok {
		return nil
	}
	if b == 0 {
		rt.Throw(rt.NewRangeError("division by zero"))
		return nil
	}
	return rt.NewNumber(a / b)
}

// unaryMathOp adapts a math-suite function to the method signature.
func unaryMathOp(op func(float64) float64) Method {
	return func(rt *Runtime, self *Value, args ...*Value) *Value {
		f, ok := numberPayload(self)
		if !ok {
			return nil
		}
		return rt.NewNumber(op(f))
	}
}

func numberSqrt(rt *Runtime, self *Value, args ...*Value) *Value {
	f, ok := numberPayload(self)
	if !ok {
		return nil
	}
	if f < 0 {
		rt.Throw(rt.NewRangeError("square root of negative number"))
		return nil
	}
	return rt.NewNumber(math.Sqrt(f))
}

func registerNumberType(rt *Runtime) {
	rt.RegisterType("number", Lifecycle{
		Initializer: func(rt *Runtime) {
			rt.RegisterMethod(TypeNumber, "toString", numberToString)
			rt.RegisterMethod(TypeNumber, "add", binaryNumberOp(func(a, b float64) float64 { return a + b }))
			rt.RegisterMethod(TypeNumber, "subtract", binaryNumberOp(func(a, b float64) float64 { return a - b }))
			rt.RegisterMethod(TypeNumber, "multiply", binaryNumberOp(func(a, b float64) float64 { return a * b }))
			rt.RegisterMethod(TypeNumber, "divide", numberDivide)

			// Math suite.
			rt.RegisterMethod(TypeNumber, "abs", unaryMathOp(math.Abs))
			rt.RegisterMethod(TypeNumber, "floor", unaryMathOp(math.Floor))
			rt.RegisterMethod(TypeNumber, "ceil", unaryMathOp(math.Ceil))
			rt.RegisterMethod(TypeNumber, "round", unaryMathOp(math.Round))
			rt.RegisterMethod(TypeNumber, "sqrt", numberSqrt)
			rt.RegisterMethod(TypeNumber, "pow", binaryNumberOp(math.Pow))
			rt.RegisterMethod(TypeNumber, "min", binaryNumberOp(math.Min))
			rt.RegisterMethod(TypeNumber, "max", binaryNumberOp(math.Max))
		},
		Create:  numberCreate,
		Equal:   numberEqual,
		Compare: numberCompare,
		Flags:   FlagPrimitive,
	})
}
