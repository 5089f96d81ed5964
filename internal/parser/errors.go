package parser

import (
	"errors"
	"fmt"
	"hilal/internal/token"
)

var (
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrExpectedToken        = errors.New("expected token")
	ErrIncomplete           = errors.New("incomplete input")
	ErrUnsupportedStatement = errors.New("unsupported statement")
)

// SyntaxError aborts a parse. Token is the offending token and Expected,
// when set, names what the grammar wanted instead.
type SyntaxError struct {
	Kind     error
	Token    token.Token
	Expected string
}

func (e *SyntaxError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("[%3d:%2d] %s: expected %s, got %s", e.Token.Line, e.Token.Column, e.Kind, e.Expected, e.Token)
	}
	return fmt.Sprintf("[%3d:%2d] %s: %s", e.Token.Line, e.Token.Column, e.Kind, e.Token)
}

func (e *SyntaxError) Unwrap() error { return e.Kind }

func (p *Parser) unexpected() error {
	if p.curTokenIs(token.EOF) {
		return &SyntaxError{Kind: ErrIncomplete, Token: p.curToken()}
	}
	return &SyntaxError{Kind: ErrUnexpectedToken, Token: p.curToken()}
}

func (p *Parser) expected(what string) error {
	kind := ErrExpectedToken
	if p.curTokenIs(token.EOF) {
		kind = ErrIncomplete
	}
	return &SyntaxError{Kind: kind, Token: p.curToken(), Expected: what}
}
