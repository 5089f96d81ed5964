package foreign

import (
	"fmt"
	"hilal/internal/object"
	"strconv"
	"strings"
	"unicode/utf8"
)

// fnStdPrint writes its arguments separated by spaces and a newline.
func fnStdPrint(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Inspect()
	}
	if _, err := fmt.Fprintln(ctx.Out, strings.Join(parts, " ")); err != nil {
		return nil, err
	}
	return object.NONE, nil
}

func fnStdStr(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	if s, ok := args[0].(*object.String); ok {
		return s, nil
	}
	return &object.String{Value: args[0].Inspect()}, nil
}

func fnStdNum(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.Number:
		return arg, nil
	case *object.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to a number", arg.Value)
		}
		return &object.Number{Value: v}, nil
	}
	return nil, object.NewRuntimeError(object.ErrType, "argument to `num` not supported, got %s", args[0].Type())
}

// fnStdLen counts characters, not bytes.
func fnStdLen(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	s, err := unpackString(args[0], "len")
	if err != nil {
		return nil, err
	}
	return &object.Number{Value: float64(utf8.RuneCountInString(s))}, nil
}

func fnStdType(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	return &object.String{Value: string(args[0].Type())}, nil
}
