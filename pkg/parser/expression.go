package parser

import (
	"fmt"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/token"
	"github.com/lemonberrylabs/ego/pkg/types"
)

var (
	orOps         = token.NewSet(token.PipeOperator)
	andOps        = token.NewSet(token.AmpersandOperator)
	comparisonOps = token.NewSet(
		token.EqualityOperator, token.InequalityOperator,
		token.LessThanOperator, token.LessEqualOperator,
		token.GreaterThanOperator, token.GreaterEqualOperator,
	)
	termOps    = token.NewSet(token.PlusOperator, token.MinusOperator)
	productOps = token.NewSet(token.MultiplyOperator, token.DivideOperator)
)

// parseExpression parses the expression starting at pos.
//
// Precedence (low to high):
//
//	|
//	&
//	== != < <= > >=   (non-associative)
//	+ -
//	* /
//	unary - !, literals, names, calls, ( ... )
//
// Internally each level returns the index just past what it parsed.
func (p *Parser) parseExpression(pos int) (int, *ast.Node, error) {
	end, node, err := p.logicOr(pos)
	if err != nil {
		return 0, nil, err
	}
	return end - pos - 1, node, nil
}

func (p *Parser) logicOr(pos int) (int, *ast.Node, error) {
	return p.leftAssoc(pos, orOps, p.logicAnd)
}

func (p *Parser) logicAnd(pos int) (int, *ast.Node, error) {
	return p.leftAssoc(pos, andOps, p.comparison)
}

func (p *Parser) comparison(pos int) (int, *ast.Node, error) {
	end, left, err := p.term(pos)
	if err != nil {
		return 0, nil, err
	}
	op, ok := p.at(end)
	if !ok || !comparisonOps.Has(op.Kind) {
		return end, left, nil
	}
	if err := p.operandAfter(op, end+1); err != nil {
		return 0, nil, err
	}
	end, right, err := p.term(end + 1)
	if err != nil {
		return 0, nil, err
	}
	if next, ok := p.at(end); ok && comparisonOps.Has(next.Kind) {
		return 0, nil, types.NewExpressionError("comparison operators cannot be chained").AtLine(next.Line)
	}
	return end, ast.NewBinary(op, left, right), nil
}

func (p *Parser) term(pos int) (int, *ast.Node, error) {
	return p.leftAssoc(pos, termOps, p.product)
}

func (p *Parser) product(pos int) (int, *ast.Node, error) {
	return p.leftAssoc(pos, productOps, p.factor)
}

// leftAssoc parses next (op next)* and folds to the left, so 1+2+3 becomes
// ((1+2)+3).
func (p *Parser) leftAssoc(pos int, ops token.Set, next func(int) (int, *ast.Node, error)) (int, *ast.Node, error) {
	end, left, err := next(pos)
	if err != nil {
		return 0, nil, err
	}
	for {
		op, ok := p.at(end)
		if !ok || !ops.Has(op.Kind) {
			return end, left, nil
		}
		if err := p.operandAfter(op, end+1); err != nil {
			return 0, nil, err
		}
		var right *ast.Node
		end, right, err = next(end + 1)
		if err != nil {
			return 0, nil, err
		}
		left = ast.NewBinary(op, left, right)
	}
}

// factor parses a single operand.
func (p *Parser) factor(pos int) (int, *ast.Node, error) {
	tok, ok := p.at(pos)
	if !ok {
		return 0, nil, types.NewExpressionError("unexpected end of expression").AtLine(p.lastLine())
	}

	switch tok.Kind {
	case token.NumberLiteral, token.StringLiteral, token.TrueKeyword, token.FalseKeyword, token.NothingKeyword:
		leaf, err := p.leaf(tok)
		if err != nil {
			return 0, nil, err
		}
		return pos + 1, leaf, nil

	case token.Identifier:
		if p.is(pos+1, token.OpenParenthesis) {
			n, node, err := p.call(pos, callExpressionRule)
			if err != nil {
				return 0, nil, err
			}
			return pos + 1 + n, node, nil
		}
		return pos + 1, ast.NewExpr(ast.Identifier, types.NewIdentifier(tok.Lexeme), tok), nil

	case token.OpenParenthesis:
		n, group, err := p.group(pos)
		if err != nil {
			return 0, nil, err
		}
		if len(group.Children) != 1 {
			return 0, nil, types.NewSyntaxError("expected a single expression in parentheses").AtLine(tok.Line)
		}
		return pos + 1 + n, group, nil

	case token.MinusOperator, token.NotOperator:
		if err := p.operandAfter(tok, pos+1); err != nil {
			return 0, nil, err
		}
		end, operand, err := p.factor(pos + 1)
		if err != nil {
			return 0, nil, err
		}
		return end, ast.NewUnary(tok, operand), nil

	case token.Unknown:
		return 0, nil, unrecognized(tok)
	}

	return 0, nil, types.NewSyntaxError(fmt.Sprintf("unexpected '%s' in expression", tok.Lexeme)).AtLine(tok.Line)
}

// operandAfter checks that an operand follows op at i. A missing operand is
// an Expression error; an unrecognizable one is left for factor to report.
func (p *Parser) operandAfter(op token.Token, i int) error {
	tok, ok := p.at(i)
	if ok && (operand.Has(tok.Kind) || tok.Kind == token.Unknown) {
		return nil
	}
	return types.NewExpressionError(fmt.Sprintf("missing operand after '%s'", op.Lexeme)).AtLine(op.Line)
}
