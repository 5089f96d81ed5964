package foreign

import (
	"hilal/internal/ast"
	"hilal/internal/object"
	"math"
)

func unpackString(arg object.Object, fnName string) (string, error) {
	value, ok := arg.(*object.String)
	if !ok {
		return "", object.NewRuntimeError(object.ErrType, "argument to `%s` must be a STRING, got=%s", fnName, arg.Type())
	}
	return value.Value, nil
}

func unpackNumber(arg object.Object, fnName string) (float64, error) {
	value, ok := arg.(*object.Number)
	if !ok {
		return 0, object.NewRuntimeError(object.ErrType, "argument to `%s` must be a NUMBER, got=%s", fnName, arg.Type())
	}
	return value.Value, nil
}

// unpackHandle reads a handle id returned by an earlier builtin call.
func unpackHandle(arg object.Object, fnName string) (int64, error) {
	v, err := unpackNumber(arg, fnName)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, object.NewRuntimeError(object.ErrType, "argument to `%s` must be a handle, got=%s", fnName, ast.FormatNumber(v))
	}
	return int64(v), nil
}

func boolToNumber(b bool) *object.Number {
	if b {
		return &object.Number{Value: 1}
	}
	return &object.Number{Value: 0}
}

// ToNative converts a value for use by host APIs. Integral numbers become
// int64 so database drivers store them as integers.
func ToNative(obj object.Object) interface{} {
	switch o := obj.(type) {
	case *object.Number:
		if o.Value == math.Trunc(o.Value) && math.Abs(o.Value) < 1<<53 {
			return int64(o.Value)
		}
		return o.Value
	case *object.String:
		return o.Value
	case *object.None:
		return nil
	}
	return obj.Inspect()
}
