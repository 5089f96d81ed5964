package foreign

import (
	"hilal/internal/object"
	"os"
)

// fnSysEnv returns None for unset variables.
func fnSysEnv(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	name, err := unpackString(args[0], "env")
	if err != nil {
		return nil, err
	}
	if value, ok := os.LookupEnv(name); ok {
		return &object.String{Value: value}, nil
	}
	return object.NONE, nil
}
