package parser

import (
	"fmt"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/token"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// statement dispatches on the kind of the token at pos.
func (p *Parser) statement(pos int) (int, *ast.Node, error) {
	tok := p.tokens[pos]

	switch tok.Kind {
	case token.OpenBrace:
		return p.block(pos)
	case token.EndOfStatement:
		return 0, nil, nil
	case token.IfKeyword:
		return p.conditional(pos, ast.IfStatement, ifRule)
	case token.WhileKeyword:
		return p.conditional(pos, ast.WhileStatement, whileRule)
	case token.LetKeyword:
		return p.declaration(pos)
	case token.FunctionKeyword:
		return p.functionDeclaration(pos)
	case token.ReturnKeyword:
		return p.construct(pos, ast.ReturnStatement, returnRule)
	case token.BreakKeyword:
		return p.construct(pos, ast.BreakStatement, breakRule)
	case token.ImportKeyword:
		return p.construct(pos, ast.ImportStatement, importRule)
	case token.ElseKeyword:
		return 0, nil, types.NewSyntaxError("else branches are not supported").AtLine(tok.Line)
	case token.Identifier:
		switch {
		case p.is(pos+1, token.OpenParenthesis):
			return p.callStatement(pos)
		case p.is(pos+1, token.AssignmentOperator):
			return p.reassignment(pos)
		}
		return p.expressionStatement(pos)
	case token.Unknown:
		return 0, nil, unrecognized(tok)
	}

	if operand.Has(tok.Kind) {
		return p.expressionStatement(pos)
	}
	return 0, nil, types.NewSyntaxError(fmt.Sprintf("unexpected '%s' at start of statement", tok.Lexeme)).AtLine(tok.Line)
}

// construct creates a tag node for the token at pos and matches rule
// against the tokens after it.
func (p *Parser) construct(pos int, tag ast.Tag, rule Rule) (int, *ast.Node, error) {
	node := ast.New(tag, p.tokens[pos])
	n, err := p.lookahead(rule, pos+1, node)
	if err != nil {
		return 0, nil, err
	}
	return n, node, nil
}

// callStatement parses "name(args...);".
func (p *Parser) callStatement(pos int) (int, *ast.Node, error) {
	return p.call(pos, callStatementRule)
}

// call parses a function call whose name is the token at pos.
func (p *Parser) call(pos int, rule Rule) (int, *ast.Node, error) {
	name := p.tokens[pos]
	node := ast.New(ast.FunctionCall, name)
	node.Append(ast.NewExpr(ast.Identifier, types.NewIdentifier(name.Lexeme), name))
	n, err := p.lookahead(rule, pos+1, node)
	if err != nil {
		return 0, nil, err
	}
	return n, node, nil
}

// reassignment parses "name = value;".
func (p *Parser) reassignment(pos int) (int, *ast.Node, error) {
	name := p.tokens[pos]
	node := ast.New(ast.Assignment, name)
	node.Append(ast.NewExpr(ast.Identifier, types.NewIdentifier(name.Lexeme), name))
	n, err := p.lookahead(reassignmentRule, pos+1, node)
	if err != nil {
		return 0, nil, err
	}
	return n, node, nil
}

// declaration parses "let name = value;" and "let name: type = value;".
func (p *Parser) declaration(pos int) (int, *ast.Node, error) {
	rule := assignmentRule
	if p.is(pos+2, token.Colon) {
		rule = annotatedAssignmentRule
	}
	return p.construct(pos, ast.VariableDeclaration, rule)
}

// conditional parses if and while: a single-expression condition group
// followed by a body block.
func (p *Parser) conditional(pos int, tag ast.Tag, rule Rule) (int, *ast.Node, error) {
	n, node, err := p.construct(pos, tag, rule)
	if err != nil {
		return 0, nil, err
	}
	if cond := node.Children[0]; len(cond.Children) != 1 {
		return 0, nil, types.NewSyntaxError(fmt.Sprintf("%s condition must be a single expression", node.Token.Lexeme)).AtLine(cond.Line())
	}
	return n, node, nil
}

// functionDeclaration parses "fn name(params...) { body }".
func (p *Parser) functionDeclaration(pos int) (int, *ast.Node, error) {
	n, node, err := p.construct(pos, ast.FunctionDeclaration, functionRule)
	if err != nil {
		return 0, nil, err
	}
	seen := make(map[string]bool)
	for _, param := range node.Children[1].Children {
		if !param.Is(ast.Identifier) {
			return 0, nil, types.NewSyntaxError("function parameters must be identifiers").AtLine(param.Line())
		}
		name := param.Value.AsIdentifier()
		if seen[name] {
			return 0, nil, types.NewRedeclarationError(name).AtLine(param.Line())
		}
		seen[name] = true
	}
	return n, node, nil
}

// expressionStatement parses an expression with an optional trailing ';'.
func (p *Parser) expressionStatement(pos int) (int, *ast.Node, error) {
	n, node, err := p.parseExpression(pos)
	if err != nil {
		return 0, nil, err
	}
	if p.is(pos+1+n, token.EndOfStatement) {
		n++
	}
	return n, node, nil
}

func unrecognized(tok token.Token) error {
	return types.NewLexicalError(fmt.Sprintf("unrecognized token '%s'", tok.Lexeme)).AtLine(tok.Line)
}
