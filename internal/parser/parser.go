package parser

import (
	"hilal/internal/ast"
	"hilal/internal/lexer"
	"hilal/internal/token"
	"log/slog"
)

const (
	_      int = iota
	LOWEST     // anything that ends an expression
	SUM        // + - ♡ ۩
)

// Only the additive level is chained. Products and comparisons end the
// expression and are then reported by the statement terminator check.
var precedences = map[string]int{
	token.RolePlus:   SUM,
	token.RoleMinus:  SUM,
	token.RoleEquals: SUM,
}

// Parser is a recursive-descent parser over a finished token slice. The
// index of the current token is its only mutable state.
type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse builds a Program from a token sequence. The first syntax error
// aborts the parse.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseSource tokenizes and parses src.
func ParseSource(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *Parser) curToken() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return token.Token{Type: token.EOF, Position: last.Position, Line: last.Line, Column: last.Column}
	}
	return token.Token{Type: token.EOF, Line: 1, Column: 1}
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken().Type == t
}

// curRoleIs matches keywords, alternate symbols and operators by role, so
// `def` and `﷽` are interchangeable everywhere.
func (p *Parser) curRoleIs(role string) bool {
	tok := p.curToken()
	switch tok.Type {
	case token.KEYWORD, token.SYMBOL, token.OPERATOR:
		return tok.Role == role
	}
	return false
}

func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.curToken()
	if tok.Type != t {
		return tok, p.expected(string(t))
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) expectOperator(role string) error {
	if !p.curTokenIs(token.OPERATOR) || p.curToken().Role != role {
		return p.expected("'" + role + "'")
	}
	p.nextToken()
	return nil
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Node{}}

	for {
		p.skipNewlines()
		if p.curTokenIs(token.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}

	slog.Debug("parsed program", slog.Int("statements", len(program.Statements)))
	return program, nil
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) parseStatement() (ast.Node, error) {
	tok := p.curToken()
	if tok.Type == token.KEYWORD || (tok.Type == token.SYMBOL && tok.Role != "") {
		switch tok.Role {
		case token.RoleIf:
			return p.parseIfStatement()
		case token.RoleDef:
			return p.parseFunctionDef()
		case token.RoleFor, token.RoleWhile:
			return nil, &SyntaxError{Kind: ErrUnsupportedStatement, Token: tok}
		case token.RoleElse:
			return nil, p.unexpected()
		}
		if tok.Type == token.KEYWORD {
			return nil, &SyntaxError{Kind: ErrUnsupportedStatement, Token: tok}
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() (ast.Node, error) {
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	switch p.curToken().Type {
	case token.NEWLINE:
		p.nextToken()
	case token.EOF, token.DEDENT:
		// left for the enclosing program or block
	default:
		return nil, p.unexpected()
	}
	return expr, nil
}

// parseIfStatement handles
//
//	if <expr>:
//	    <block>
//	else:
//	    <block>
func (p *Parser) parseIfStatement() (ast.Node, error) {
	stmt := &ast.IfStatement{Token: p.curToken()}
	p.nextToken()

	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = cond

	if stmt.ThenBranch, err = p.parseSuite(); err != nil {
		return nil, err
	}

	if p.curRoleIs(token.RoleElse) {
		p.nextToken()
		if stmt.ElseBranch, err = p.parseSuite(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseFunctionDef() (ast.Node, error) {
	def := &ast.FunctionDef{Token: p.curToken()}
	p.nextToken()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	def.Name = name.Literal

	if err := p.expectOperator("("); err != nil {
		return nil, err
	}
	if def.Parameters, err = p.parseParameters(); err != nil {
		return nil, err
	}
	if def.Body, err = p.parseSuite(); err != nil {
		return nil, err
	}
	return def, nil
}

// parseParameters reads identifiers up to and including the closing paren.
func (p *Parser) parseParameters() ([]*ast.Identifier, error) {
	params := []*ast.Identifier{}
	if p.curRoleIs(")") {
		p.nextToken()
		return params, nil
	}
	for {
		tok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Identifier{Token: tok, Value: tok.Literal})
		if !p.curRoleIs(",") {
			break
		}
		p.nextToken()
	}
	if err := p.expectOperator(")"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseSuite reads `':' NEWLINE INDENT statements DEDENT`.
func (p *Parser) parseSuite() (*ast.Block, error) {
	if err := p.expectOperator(":"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE); err != nil {
		return nil, err
	}
	indent, err := p.expect(token.INDENT)
	if err != nil {
		return nil, err
	}
	return p.parseBlock(indent)
}

func (p *Parser) parseBlock(indent token.Token) (*ast.Block, error) {
	block := &ast.Block{Token: indent, Statements: []ast.Node{}}

	for {
		p.skipNewlines()
		if p.curTokenIs(token.DEDENT) {
			p.nextToken()
			return block, nil
		}
		if p.curTokenIs(token.EOF) {
			return nil, p.expected(token.DEDENT)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

func (p *Parser) curPrecedence() int {
	tok := p.curToken()
	if tok.Type != token.OPERATOR && tok.Type != token.SYMBOL {
		return LOWEST
	}
	if prec, ok := precedences[tok.Role]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) (ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for precedence < p.curPrecedence() {
		left, err = p.parseBinaryOp(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseBinaryOp(left ast.Node) (ast.Node, error) {
	expr := &ast.BinaryOp{
		Token:    p.curToken(),
		Operator: p.curToken().Role,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()

	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	expr.Right = right
	return expr, nil
}

func (p *Parser) parseFactor() (ast.Node, error) {
	tok := p.curToken()
	switch tok.Type {
	case token.NUMBER:
		p.nextToken()
		return &ast.NumberLiteral{Token: tok, Value: tok.Number}, nil
	case token.STRING:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case token.IDENT:
		p.nextToken()
		ident := &ast.Identifier{Token: tok, Value: tok.Literal}
		if p.curRoleIs("(") {
			return p.parseCall(ident)
		}
		return ident, nil
	case token.OPERATOR:
		if tok.Role == "(" {
			p.nextToken()
			expr, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			if err := p.expectOperator(")"); err != nil {
				return nil, err
			}
			return expr, nil
		}
	}
	return nil, p.unexpected()
}

func (p *Parser) parseCall(function *ast.Identifier) (ast.Node, error) {
	call := &ast.Call{Token: function.Token, Function: function, Arguments: []ast.Node{}}
	p.nextToken() // (

	if p.curRoleIs(")") {
		p.nextToken()
		return call, nil
	}
	for {
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, arg)
		if !p.curRoleIs(",") {
			break
		}
		p.nextToken()
	}
	if err := p.expectOperator(")"); err != nil {
		return nil, err
	}
	return call, nil
}
