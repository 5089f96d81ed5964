package object

import "hilal/internal/token"

// BinaryOp applies op to two evaluated operands. Both backends go through
// here so they agree on every result and every failure.
func BinaryOp(op string, left, right Object) (Object, error) {
	switch l := left.(type) {
	case *Number:
		if r, ok := right.(*Number); ok {
			return numberOp(op, l.Value, r.Value)
		}
	case *String:
		if r, ok := right.(*String); ok && op == token.RolePlus {
			return &String{Value: l.Value + r.Value}, nil
		}
	}
	return nil, NewRuntimeError(ErrType, "unsupported operation: %s %s %s", left.Type(), op, right.Type())
}

// Division by zero follows IEEE 754 and yields an infinity or NaN.
func numberOp(op string, l, r float64) (Object, error) {
	switch op {
	case token.RolePlus:
		return &Number{Value: l + r}, nil
	case token.RoleMinus:
		return &Number{Value: l - r}, nil
	case "*":
		return &Number{Value: l * r}, nil
	case "/":
		return &Number{Value: l / r}, nil
	case token.RoleEquals:
		if l == r {
			return &Number{Value: 1}, nil
		}
		return &Number{Value: 0}, nil
	}
	return nil, NewRuntimeError(ErrType, "unsupported operation: %s %s %s", NUMBER_OBJ, op, NUMBER_OBJ)
}
