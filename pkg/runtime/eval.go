package runtime

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/token"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// eval evaluates an expression node.
func (e *Engine) eval(ctx context.Context, node *ast.Node) (types.Value, error) {
	switch node.Tag {
	case ast.Group:
		if len(node.Children) != 1 {
			return types.Nothing, types.NewExpressionError("a group must hold exactly one expression").AtLine(node.Line())
		}
		return e.eval(ctx, node.Children[0])
	case ast.FunctionCall:
		v, err := e.call(ctx, node)
		return v, at(err, node)
	case ast.Expression:
	default:
		return types.Nothing, types.NewExpressionError(fmt.Sprintf("%s is not an expression", node.Tag)).AtLine(node.Line())
	}

	switch node.Expr {
	case ast.StringLiteral, ast.NumberLiteral, ast.BooleanLiteral, ast.NothingLiteral:
		return node.Value, nil
	case ast.Identifier:
		v, err := e.scopes.Get(node.Value.AsIdentifier())
		return v, at(err, node)
	case ast.UnaryOperation:
		v, err := e.evalUnary(ctx, node)
		return v, at(err, node)
	case ast.BinaryOperation:
		v, err := e.evalBinary(ctx, node)
		return v, at(err, node)
	}
	return types.Nothing, types.NewExpressionError(fmt.Sprintf("cannot evaluate %s", node.Expr)).AtLine(node.Line())
}

func (e *Engine) evalUnary(ctx context.Context, node *ast.Node) (types.Value, error) {
	operand, err := e.eval(ctx, node.Children[0])
	if err != nil {
		return types.Nothing, err
	}

	switch node.Token.Kind {
	case token.MinusOperator:
		if operand.Type() != types.TypeNumber {
			return types.Nothing, types.NewTypeError(
				fmt.Sprintf("unary minus not supported for %s", operand.Type()))
		}
		if operand.AsNumber() == math.MinInt64 {
			return types.Nothing, overflow("-")
		}
		return types.NewNumber(-operand.AsNumber()), nil
	case token.NotOperator:
		if operand.Type() != types.TypeBool {
			return types.Nothing, types.NewTypeError(
				fmt.Sprintf("'!' not supported for %s", operand.Type()))
		}
		return types.NewBool(!operand.AsBool()), nil
	}
	return types.Nothing, types.NewExpressionError(fmt.Sprintf("unsupported unary operator '%s'", node.Token.Lexeme))
}

func (e *Engine) evalBinary(ctx context.Context, node *ast.Node) (types.Value, error) {
	op := node.Token.Kind

	// & and | short-circuit and require bools on both sides.
	if op == token.AmpersandOperator || op == token.PipeOperator {
		left, err := e.evalBool(ctx, node.Children[0], node.Token.Lexeme)
		if err != nil {
			return types.Nothing, err
		}
		if (op == token.AmpersandOperator && !left) || (op == token.PipeOperator && left) {
			return types.NewBool(left), nil
		}
		right, err := e.evalBool(ctx, node.Children[1], node.Token.Lexeme)
		if err != nil {
			return types.Nothing, err
		}
		return types.NewBool(right), nil
	}

	left, err := e.eval(ctx, node.Children[0])
	if err != nil {
		return types.Nothing, err
	}
	right, err := e.eval(ctx, node.Children[1])
	if err != nil {
		return types.Nothing, err
	}

	switch op {
	case token.PlusOperator:
		return evalAdd(left, right)
	case token.MinusOperator:
		return evalArith("-", left, right, subInt)
	case token.MultiplyOperator:
		return evalArith("*", left, right, mulInt)
	case token.DivideOperator:
		return evalDivide(left, right)
	case token.EqualityOperator:
		return types.NewBool(left.Equal(right)), nil
	case token.InequalityOperator:
		return types.NewBool(!left.Equal(right)), nil
	case token.LessThanOperator:
		return evalCompare(left, right, func(c int) bool { return c < 0 })
	case token.LessEqualOperator:
		return evalCompare(left, right, func(c int) bool { return c <= 0 })
	case token.GreaterThanOperator:
		return evalCompare(left, right, func(c int) bool { return c > 0 })
	case token.GreaterEqualOperator:
		return evalCompare(left, right, func(c int) bool { return c >= 0 })
	}
	return types.Nothing, types.NewExpressionError(fmt.Sprintf("unsupported binary operator '%s'", node.Token.Lexeme))
}

func (e *Engine) evalBool(ctx context.Context, node *ast.Node, op string) (bool, error) {
	v, err := e.eval(ctx, node)
	if err != nil {
		return false, err
	}
	if v.Type() != types.TypeBool {
		return false, types.NewTypeError(fmt.Sprintf("'%s' requires bool operands, got %s", op, v.Type()))
	}
	return v.AsBool(), nil
}

func evalAdd(left, right types.Value) (types.Value, error) {
	// String concatenation (string + string only; no auto-coercion)
	if left.Type() == types.TypeString && right.Type() == types.TypeString {
		return types.NewString(left.AsString() + right.AsString()), nil
	}
	if left.Type() == types.TypeString || right.Type() == types.TypeString {
		return types.Nothing, types.NewTypeError(
			fmt.Sprintf("unsupported operand types for +: %s and %s", left.Type(), right.Type()))
	}
	return evalArith("+", left, right, addInt)
}

func evalArith(op string, left, right types.Value, intOp func(int64, int64) (int64, bool)) (types.Value, error) {
	if left.Type() != types.TypeNumber || right.Type() != types.TypeNumber {
		return types.Nothing, types.NewTypeError(
			fmt.Sprintf("unsupported operand types for %s: %s and %s", op, left.Type(), right.Type()))
	}
	n, ok := intOp(left.AsNumber(), right.AsNumber())
	if !ok {
		return types.Nothing, overflow(op)
	}
	return types.NewNumber(n), nil
}

// Checked int64 arithmetic. ok is false when the result does not fit.

func addInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return c, false
	}
	return c, c/b == a
}

func overflow(op string) error {
	return types.NewExpressionError(fmt.Sprintf("integer overflow in '%s'", op))
}

// evalDivide performs integer division truncated toward zero.
func evalDivide(left, right types.Value) (types.Value, error) {
	if left.Type() != types.TypeNumber || right.Type() != types.TypeNumber {
		return types.Nothing, types.NewTypeError(
			fmt.Sprintf("unsupported operand types for /: %s and %s", left.Type(), right.Type()))
	}
	if right.AsNumber() == 0 {
		return types.Nothing, types.NewExpressionError("division by zero")
	}
	if left.AsNumber() == math.MinInt64 && right.AsNumber() == -1 {
		return types.Nothing, overflow("/")
	}
	return types.NewNumber(left.AsNumber() / right.AsNumber()), nil
}

func evalCompare(left, right types.Value, test func(int) bool) (types.Value, error) {
	cmp, err := compare(left, right)
	if err != nil {
		return types.Nothing, err
	}
	return types.NewBool(test(cmp)), nil
}

// compare returns negative, zero, or positive for ordering.
func compare(a, b types.Value) (int, error) {
	if a.Type() == types.TypeNumber && b.Type() == types.TypeNumber {
		an, bn := a.AsNumber(), b.AsNumber()
		if an < bn {
			return -1, nil
		}
		if an > bn {
			return 1, nil
		}
		return 0, nil
	}

	if a.Type() == types.TypeString && b.Type() == types.TypeString {
		return strings.Compare(a.AsString(), b.AsString()), nil
	}

	return 0, types.NewTypeError(
		fmt.Sprintf("cannot compare %s and %s", a.Type(), b.Type()))
}
