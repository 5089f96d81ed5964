package foreign

import (
	"errors"
	"fmt"
	"hilal/internal/object"
	"io/fs"
	"os"
)

func fnIoFsReadFile(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	path, err := unpackString(args[0], "read_file")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &object.String{Value: string(data)}, nil
}

func fnIoFsWriteFile(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	path, err := unpackString(args[0], "write_file")
	if err != nil {
		return nil, err
	}
	content, err := unpackString(args[1], "write_file")
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return object.NONE, nil
}

// fnIoFsAppendFile creates the file when missing and returns the number of
// bytes written.
func fnIoFsAppendFile(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	path, err := unpackString(args[0], "append_file")
	if err != nil {
		return nil, err
	}
	content, err := unpackString(args[1], "append_file")
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	n, err := f.WriteString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to append to file: %w", err)
	}
	return &object.Number{Value: float64(n)}, nil
}

func fnIoFsExists(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	path, err := unpackString(args[0], "file_exists")
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return boolToNumber(false), nil
	}
	if err != nil {
		return nil, err
	}
	return boolToNumber(true), nil
}
