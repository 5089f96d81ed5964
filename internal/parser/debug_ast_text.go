package parser

import (
	"fmt"
	"hilal/internal/ast"
	"reflect"
	"strings"
)

// RenderASTAsText produces an indented, one-node-per-line view of the AST.
// It is meant for debugging precedence and block structure.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return strings.Repeat("  ", indent) + "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		var sb strings.Builder
		sb.WriteString(sp + "Program")
		for _, s := range n.Statements {
			sb.WriteString("\n")
			sb.WriteString(RenderASTAsText(s, indent+1))
		}
		return sb.String()

	case *ast.Block:
		var sb strings.Builder
		sb.WriteString(sp + "Block")
		for _, s := range n.Statements {
			sb.WriteString("\n")
			sb.WriteString(RenderASTAsText(s, indent+1))
		}
		return sb.String()

	case *ast.IfStatement:
		var sb strings.Builder
		sb.WriteString(sp + "If\n")
		sb.WriteString(RenderASTAsText(n.Condition, indent+1))
		sb.WriteString("\n" + RenderASTAsText(n.ThenBranch, indent+1))
		if n.ElseBranch != nil {
			sb.WriteString("\n" + sp + "Else\n")
			sb.WriteString(RenderASTAsText(n.ElseBranch, indent+1))
		}
		return sb.String()

	case *ast.FunctionDef:
		return fmt.Sprintf("%sDef %s(%s)\n%s", sp, n.Name,
			strings.Join(n.ParameterNames(), ", "), RenderASTAsText(n.Body, indent+1))

	case *ast.Call:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%sCall %s", sp, n.Function.Value))
		for _, a := range n.Arguments {
			sb.WriteString("\n")
			sb.WriteString(RenderASTAsText(a, indent+1))
		}
		return sb.String()

	case *ast.BinaryOp:
		return fmt.Sprintf("%sBinaryOp %s\n%s\n%s", sp, n.Operator,
			RenderASTAsText(n.Left, indent+1), RenderASTAsText(n.Right, indent+1))

	case *ast.Identifier:
		return sp + "Identifier " + n.Value
	case *ast.NumberLiteral:
		return sp + "Number " + ast.FormatNumber(n.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%sString %q", sp, n.Value)
	}

	return fmt.Sprintf("%s<unknown %T>", sp, node)
}
