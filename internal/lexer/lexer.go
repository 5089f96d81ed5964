package lexer

import (
	"hilal/internal/token"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination
	eof          bool

	line   int
	column int

	indents []int // widths of the open blocks, bottom entry is always 0
	tokens  []token.Token
}

func New(input string) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		indents: []int{0},
	}
	l.readChar()
	return l
}

// Tokenize converts source text into a token sequence terminated by a single
// EOF token. Indentation changes after a newline are reported as INDENT and
// DEDENT tokens.
func Tokenize(input string) ([]token.Token, error) {
	return New(input).Tokenize()
}

func (l *Lexer) Tokenize() ([]token.Token, error) {
	for !l.eof {
		switch {
		case l.ch == '\n':
			l.emitNewline()
			l.readChar()
			if err := l.handleIndent(); err != nil {
				return nil, err
			}
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			l.skipToLineEnd()
		case isLetter(l.ch):
			l.tokens = append(l.tokens, l.readIdentifier())
		case isDigit(l.ch):
			tok, err := l.readNumber()
			if err != nil {
				return nil, err
			}
			l.tokens = append(l.tokens, tok)
		case l.ch == '"' || l.ch == '\'':
			tok, err := l.readString()
			if err != nil {
				return nil, err
			}
			l.tokens = append(l.tokens, tok)
		default:
			tok, err := l.readOperator()
			if err != nil {
				return nil, err
			}
			l.tokens = append(l.tokens, tok)
		}
	}

	// close every block still open at end of input
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.DEDENT, "")
	}
	l.emit(token.EOF, "")

	slog.Debug("tokenized source",
		slog.Int("bytes", len(l.input)),
		slog.Int("tokens", len(l.tokens)))
	return l.tokens, nil
}

func (l *Lexer) emit(t token.TokenType, literal string) {
	l.tokens = append(l.tokens, token.Token{
		Type:     t,
		Literal:  literal,
		Position: l.position,
		Line:     l.line,
		Column:   l.column,
	})
}

// emitNewline records the end of a logical line. Blank lines and lines that
// only hold a comment never produce a NEWLINE of their own.
func (l *Lexer) emitNewline() {
	if len(l.tokens) == 0 {
		return
	}
	switch l.tokens[len(l.tokens)-1].Type {
	case token.NEWLINE, token.INDENT, token.DEDENT:
		return
	}
	l.emit(token.NEWLINE, "\n")
}

// handleIndent measures the leading spaces of the line that starts at the
// current position and compares the width against the indentation stack.
func (l *Lexer) handleIndent() error {
	width := 0
	for l.ch == ' ' && !l.eof {
		width++
		l.readChar()
	}
	if l.eof || l.ch == '\n' || l.ch == '#' || (l.ch == '\r' && l.peekChar() == '\n') {
		return nil
	}

	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.emit(token.INDENT, "")
	case width < top:
		for width < top {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(token.DEDENT, "")
			top = l.indents[len(l.indents)-1]
		}
		if top != width {
			return l.newError(ErrInconsistentIndent, "width %d does not match any enclosing block", width)
		}
	}
	return nil
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && !l.eof {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.eof = true
		l.position = len(l.input)
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier scans the maximal identifier run and classifies it against
// the keyword and alternate-symbol tables.
func (l *Lexer) readIdentifier() token.Token {
	start, line, col := l.position, l.line, l.column
	for !l.eof && (isLetter(l.ch) || unicode.IsDigit(l.ch)) {
		l.readChar()
	}
	literal := norm.NFC.String(l.input[start:l.position])
	t, role := token.LookupIdent(literal)
	return token.Token{Type: t, Literal: literal, Role: role, Position: start, Line: line, Column: col}
}

// readNumber consumes digits and decimal points. The text has to parse as a
// 64-bit float.
func (l *Lexer) readNumber() (token.Token, error) {
	start, line, col := l.position, l.line, l.column
	for !l.eof && (isDigit(l.ch) || l.ch == '.') {
		l.readChar()
	}
	literal := l.input[start:l.position]
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return token.Token{}, &Error{Kind: ErrMalformedNumber, Text: literal, Position: start, Line: line, Column: col}
	}
	return token.Token{Type: token.NUMBER, Literal: literal, Number: value, Position: start, Line: line, Column: col}, nil
}

// readString consumes up to the closing quote of the same kind that opened
// the literal. There are no escape sequences.
func (l *Lexer) readString() (token.Token, error) {
	quote := l.ch
	start, line, col := l.position, l.line, l.column
	l.readChar() // consume the opening quote
	from := l.position
	for !l.eof && l.ch != quote {
		l.readChar()
	}
	if l.eof {
		return token.Token{}, &Error{Kind: ErrUnterminatedString, Text: l.input[start:], Position: start, Line: line, Column: col}
	}
	literal := l.input[from:l.position]
	l.readChar() // consume the closing quote
	return token.Token{Type: token.STRING, Literal: literal, Position: start, Line: line, Column: col}, nil
}

func (l *Lexer) readOperator() (token.Token, error) {
	role, ok := token.LookupOperator(l.ch)
	if !ok {
		return token.Token{}, l.newError(ErrUnexpectedChar, "%q", l.ch)
	}
	tok := token.Token{
		Type:     token.OPERATOR,
		Literal:  string(l.ch),
		Role:     role,
		Position: l.position,
		Line:     l.line,
		Column:   l.column,
	}
	l.readChar()
	return tok, nil
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	// Letters, underscore, combining marks and everything from the Arabic block
	// upwards, so alternate symbols and emoji scan as words
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch) || ch >= 0x0600
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
