package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hilal/internal/ast"
	"os"
	"reflect"
)

// WalkAST recursively traverses an AST and serializes it into a map structure.
// The output is stable and meant for tooling.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkNodes(n.Statements),
		}

	case *ast.Block:
		return map[string]interface{}{
			"type":       "Block",
			"line":       n.Token.Line,
			"statements": walkNodes(n.Statements),
		}

	case *ast.IfStatement:
		return map[string]interface{}{
			"type":       "IfStatement",
			"line":       n.Token.Line,
			"token":      n.TokenLiteral(),
			"condition":  WalkAST(n.Condition),
			"thenBranch": WalkAST(n.ThenBranch),
			"elseBranch": WalkAST(n.ElseBranch),
		}

	case *ast.FunctionDef:
		return map[string]interface{}{
			"type":       "FunctionDef",
			"line":       n.Token.Line,
			"token":      n.TokenLiteral(),
			"name":       n.Name,
			"parameters": n.ParameterNames(),
			"body":       WalkAST(n.Body),
		}

	case *ast.Call:
		return map[string]interface{}{
			"type":      "Call",
			"line":      n.Token.Line,
			"name":      n.Function.Value,
			"arguments": walkNodes(n.Arguments),
		}

	case *ast.BinaryOp:
		return map[string]interface{}{
			"type":     "BinaryOp",
			"line":     n.Token.Line,
			"token":    n.TokenLiteral(),
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"type":  "Identifier",
			"value": n.Value,
		}

	case *ast.NumberLiteral:
		return map[string]interface{}{
			"type":  "NumberLiteral",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":  "StringLiteral",
			"value": n.Value,
		}
	}

	return map[string]interface{}{
		"type": fmt.Sprintf("%T", node),
	}
}

func walkNodes(nodes []ast.Node) []interface{} {
	result := make([]interface{}, len(nodes))
	for i, n := range nodes {
		result[i] = WalkAST(n)
	}
	return result
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}

// WriteASTToJSON writes the JSON rendering of node to filename.
func WriteASTToJSON(node ast.Node, filename string) error {
	out, err := RenderASTAsJSON(node)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(out), 0o644)
}
