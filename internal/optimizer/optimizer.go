package optimizer

import (
	"hilal/internal/ast"
	"hilal/internal/object"
	"log/slog"
	"math"
)

// Pass rewrites a single node whose children are already optimized. It
// returns the node unchanged when it does not apply, and never modifies
// its argument.
type Pass struct {
	Name    string
	Enabled bool
	Apply   func(node ast.Node) ast.Node
}

type Optimizer struct {
	Passes []*Pass

	rewrites map[string]int
}

func New() *Optimizer {
	return &Optimizer{
		Passes: []*Pass{
			{Name: "constant_folding", Enabled: true, Apply: foldConstants},
			{Name: "dead_branch_elimination", Enabled: true, Apply: eliminateDeadBranch},
		},
	}
}

// Optimize returns an optimized copy of program with every pass enabled.
func Optimize(program *ast.Program) *ast.Program {
	return New().Optimize(program)
}

// Optimize returns a new program. Nodes that no pass touched are shared
// with the input, which is left as it was.
func (o *Optimizer) Optimize(program *ast.Program) *ast.Program {
	o.rewrites = make(map[string]int)
	result := &ast.Program{Statements: o.statements(program.Statements)}

	for name, n := range o.rewrites {
		slog.Debug("optimizer pass", slog.String("pass", name), slog.Int("rewrites", n))
	}
	return result
}

// Rewrites reports how often each pass fired during the last Optimize.
func (o *Optimizer) Rewrites() map[string]int {
	return o.rewrites
}

// statements rewrites a statement list. A pass may turn an if statement
// into one of its blocks, whose statements are then spliced in place.
func (o *Optimizer) statements(stmts []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(stmts))
	for _, s := range stmts {
		rewritten := o.node(s)
		if block, ok := rewritten.(*ast.Block); ok {
			out = append(out, block.Statements...)
			continue
		}
		out = append(out, rewritten)
	}
	return out
}

func (o *Optimizer) block(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	return &ast.Block{Token: b.Token, Statements: o.statements(b.Statements)}
}

func (o *Optimizer) node(node ast.Node) ast.Node {
	var rebuilt ast.Node

	switch n := node.(type) {
	case *ast.BinaryOp:
		rebuilt = &ast.BinaryOp{Token: n.Token, Operator: n.Operator, Left: o.node(n.Left), Right: o.node(n.Right)}
	case *ast.IfStatement:
		rebuilt = &ast.IfStatement{
			Token:      n.Token,
			Condition:  o.node(n.Condition),
			ThenBranch: o.block(n.ThenBranch),
			ElseBranch: o.block(n.ElseBranch),
		}
	case *ast.FunctionDef:
		rebuilt = &ast.FunctionDef{Token: n.Token, Name: n.Name, Parameters: n.Parameters, Body: o.block(n.Body)}
	case *ast.Call:
		args := make([]ast.Node, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = o.node(a)
		}
		rebuilt = &ast.Call{Token: n.Token, Function: n.Function, Arguments: args}
	default:
		return node
	}

	for _, pass := range o.Passes {
		if !pass.Enabled {
			continue
		}
		next := pass.Apply(rebuilt)
		if next != rebuilt {
			o.rewrites[pass.Name]++
			rebuilt = next
		}
	}
	return rebuilt
}

// foldConstants evaluates arithmetic on two literals. Operations that would
// fail, or produce an infinity or NaN, are left for run time.
func foldConstants(node ast.Node) ast.Node {
	op, ok := node.(*ast.BinaryOp)
	if !ok {
		return node
	}

	var left, right object.Object
	switch l := op.Left.(type) {
	case *ast.NumberLiteral:
		left = &object.Number{Value: l.Value}
	case *ast.StringLiteral:
		left = &object.String{Value: l.Value}
	default:
		return node
	}
	switch r := op.Right.(type) {
	case *ast.NumberLiteral:
		right = &object.Number{Value: r.Value}
	case *ast.StringLiteral:
		right = &object.String{Value: r.Value}
	default:
		return node
	}

	result, err := object.BinaryOp(op.Operator, left, right)
	if err != nil {
		return node
	}
	switch v := result.(type) {
	case *object.Number:
		if math.IsInf(v.Value, 0) || math.IsNaN(v.Value) {
			return node
		}
		return &ast.NumberLiteral{Token: op.Token, Value: v.Value}
	case *object.String:
		return &ast.StringLiteral{Token: op.Token, Value: v.Value}
	}
	return node
}

// eliminateDeadBranch replaces an if statement on a numeric literal by the
// branch that always runs. A false condition without an else is kept, since
// the statement still yields None.
func eliminateDeadBranch(node ast.Node) ast.Node {
	stmt, ok := node.(*ast.IfStatement)
	if !ok {
		return node
	}
	cond, ok := stmt.Condition.(*ast.NumberLiteral)
	if !ok {
		return node
	}
	if cond.Value != 0 {
		return stmt.ThenBranch
	}
	if stmt.ElseBranch != nil {
		return stmt.ElseBranch
	}
	return node
}
