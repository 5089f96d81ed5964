package runner

import (
	"errors"
	"hilal/internal/compiler"
	"hilal/internal/lexer"
	"hilal/internal/object"
	"hilal/internal/parser"
	"hilal/internal/util"
	"hilal/internal/vm"
	"strings"
)

// Stage names which part of the pipeline produced err.
func Stage(err error) string {
	var (
		lexErr     *lexer.Error
		syntaxErr  *parser.SyntaxError
		compileErr *compiler.CompileError
		vmErr      *vm.Error
		rtErr      *object.RuntimeError
	)
	switch {
	case errors.As(err, &lexErr):
		return "lex"
	case errors.As(err, &syntaxErr):
		return "syntax"
	case errors.As(err, &compileErr):
		return "compile"
	case errors.As(err, &rtErr):
		return "runtime"
	case errors.As(err, &vmErr):
		return "machine"
	}
	return "error"
}

// Position reports the source line and column err refers to, or 0, 0.
func Position(err error) (line, column int) {
	var (
		lexErr     *lexer.Error
		syntaxErr  *parser.SyntaxError
		compileErr *compiler.CompileError
		vmErr      *vm.Error
		rtErr      *object.RuntimeError
	)
	switch {
	case errors.As(err, &lexErr):
		return lexErr.Line, lexErr.Column
	case errors.As(err, &syntaxErr):
		return syntaxErr.Token.Line, syntaxErr.Token.Column
	case errors.As(err, &compileErr):
		return compileErr.Line, compileErr.Column
	case errors.As(err, &rtErr):
		return rtErr.Line, rtErr.Column
	case errors.As(err, &vmErr):
		return vmErr.Instruction.Line, 0
	}
	return 0, 0
}

// FormatError renders err for a person, quoting the offending source line
// when the error carries a position.
func FormatError(src string, err error) string {
	var sb strings.Builder
	sb.WriteString(Stage(err))
	sb.WriteString(" error: ")
	sb.WriteString(err.Error())

	line, column := Position(err)
	if line > 0 {
		if column < 1 {
			column = 1
		}
		if context := util.GetContextLines(src, line, column, "here"); context != "" {
			sb.WriteString("\n")
			sb.WriteString(context)
		}
	}
	return sb.String()
}
