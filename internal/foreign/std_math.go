package foreign

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hilal/internal/object"
	"math"
)

func mathUnary(name string, f func(float64) float64) object.BuiltinFunction {
	return func(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
		v, err := unpackNumber(args[0], name)
		if err != nil {
			return nil, err
		}
		return &object.Number{Value: f(v)}, nil
	}
}

func mathBinary(name string, f func(float64, float64) float64) object.BuiltinFunction {
	return func(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
		a, err := unpackNumber(args[0], name)
		if err != nil {
			return nil, err
		}
		b, err := unpackNumber(args[1], name)
		if err != nil {
			return nil, err
		}
		return &object.Number{Value: f(a, b)}, nil
	}
}

var (
	fnMathAbs   = mathUnary("abs", math.Abs)
	fnMathSqrt  = mathUnary("sqrt", math.Sqrt)
	fnMathFloor = mathUnary("floor", math.Floor)
	fnMathPow   = mathBinary("pow", math.Pow)
	fnMathMin   = mathBinary("min", math.Min)
	fnMathMax   = mathBinary("max", math.Max)
)

// fnMathRndRange returns a random integer in [min, max).
func fnMathRndRange(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	lo, err := unpackNumber(args[0], "random_range")
	if err != nil {
		return nil, err
	}
	hi, err := unpackNumber(args[1], "random_range")
	if err != nil {
		return nil, err
	}
	start, end := int64(math.Ceil(lo)), int64(math.Floor(hi))
	if start >= end {
		return nil, fmt.Errorf("invalid range: min (%g) must be less than max (%g)", lo, hi)
	}

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("failed to generate random number: %v", err)
	}
	n := binary.BigEndian.Uint64(b[:]) % uint64(end-start)
	return &object.Number{Value: float64(start + int64(n))}, nil
}
