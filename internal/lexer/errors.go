package lexer

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedString = errors.New("unterminated string literal")
	ErrUnexpectedChar     = errors.New("unexpected character")
	ErrMalformedNumber    = errors.New("malformed number")
	ErrInconsistentIndent = errors.New("inconsistent indentation")
)

// Error is a lexical error. Kind is one of the Err* values above and is
// matched with errors.Is.
type Error struct {
	Kind     error
	Text     string
	Position int
	Line     int
	Column   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s: %s", e.Line, e.Column, e.Kind, e.Text)
}

func (e *Error) Unwrap() error { return e.Kind }

func (l *Lexer) newError(kind error, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Text:     fmt.Sprintf(format, args...),
		Position: l.position,
		Line:     l.line,
		Column:   l.column,
	}
}
