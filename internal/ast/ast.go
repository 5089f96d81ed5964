package ast

import (
	"bytes"
	"hilal/internal/token"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Program struct {
	Statements []Node
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) String() string {
	lines := make([]string, 0, len(p.Statements))
	for _, s := range p.Statements {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

// Block is a nested statement sequence. It only differs from Program in
// where it appears.
type Block struct {
	Token      token.Token // the INDENT token
	Statements []Node
}

func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) String() string {
	var out bytes.Buffer
	for _, s := range b.Statements {
		for _, line := range strings.Split(s.String(), "\n") {
			out.WriteString("\n    ")
			out.WriteString(line)
		}
	}
	return out.String()
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return FormatNumber(n.Value) }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string {
	// there are no escapes, so pick the quote the text does not contain
	if strings.ContainsRune(s.Value, '"') {
		return "'" + s.Value + "'"
	}
	return `"` + s.Value + `"`
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// BinaryOp holds the normalised operator, so `۩` is stored as "+".
type BinaryOp struct {
	Token    token.Token // The operator token, e.g. +
	Left     Node
	Operator string
	Right    Node
}

func (b *BinaryOp) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryOp) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Operator + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")

	return out.String()
}

type IfStatement struct {
	Token      token.Token // The 'if' token
	Condition  Node
	ThenBranch *Block
	ElseBranch *Block // nil when there is no else
}

func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(":")
	out.WriteString(is.ThenBranch.String())

	if is.ElseBranch != nil {
		out.WriteString("\nelse:")
		out.WriteString(is.ElseBranch.String())
	}

	return out.String()
}

type FunctionDef struct {
	Token      token.Token // The 'def' token
	Name       string
	Parameters []*Identifier
	Body       *Block
}

func (fd *FunctionDef) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDef) String() string {
	var out bytes.Buffer

	out.WriteString("def ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(fd.ParameterNames(), ", "))
	out.WriteString("):")
	out.WriteString(fd.Body.String())

	return out.String()
}

func (fd *FunctionDef) ParameterNames() []string {
	names := make([]string, len(fd.Parameters))
	for i, p := range fd.Parameters {
		names[i] = p.Value
	}
	return names
}

type Call struct {
	Token     token.Token // The function name token
	Function  *Identifier
	Arguments []Node
}

func (c *Call) TokenLiteral() string { return c.Token.Literal }
func (c *Call) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(c.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}

// FormatNumber renders a number the way the language prints it: integral
// values without a fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
