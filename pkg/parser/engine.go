// Package parser builds an ego syntax tree from a token sequence. Statements
// are described by declarative rules (rules.go) that a small engine matches
// against the tokens; expressions are parsed by a precedence ladder
// (expression.go).
//
// Every construct parser takes the index of its triggering token and returns
// the number of tokens it consumed after that token, plus the node it built.
// Parsing stops at the first error; there is no recovery.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/lexer"
	"github.com/lemonberrylabs/ego/pkg/token"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// Parser holds the token sequence being parsed.
type Parser struct {
	tokens []token.Token
}

// New creates a parser over tokens.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a complete program.
func Parse(tokens []token.Token) (*ast.Node, error) {
	return New(tokens).Parse()
}

// ParseSource tokenizes and parses source.
func ParseSource(source string) (*ast.Node, error) {
	return Parse(lexer.Tokenize(source))
}

// Parse builds the Root node holding every top-level statement.
func (p *Parser) Parse() (*ast.Node, error) {
	root := ast.New(ast.Root, token.Token{Line: 1, Column: 1})
	if _, err := p.lookahead(programRule, 0, root); err != nil {
		return nil, err
	}
	return root, nil
}

// at returns the token at i and whether it exists.
func (p *Parser) at(i int) (token.Token, bool) {
	if i < 0 || i >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[i], true
}

// is reports whether the token at i exists and has kind k.
func (p *Parser) is(i int, k token.Kind) bool {
	tok, ok := p.at(i)
	return ok && tok.Kind == k
}

// lookahead matches rule's slots against the tokens starting at pos,
// appending every node it produces to root. It returns the number of tokens
// consumed.
func (p *Parser) lookahead(rule Rule, pos int, root *ast.Node) (int, error) {
	i := pos
	slot := 0
	count := 0        // items taken by the current Many slot
	separated := true // an expression item may start here

	for slot < len(rule.Slots) {
		exp := rule.Slots[slot]
		tok, ok := p.at(i)

		switch exp.Kind {
		case SlotMany:
			last := slot+1 >= len(rule.Slots)
			full := exp.Max > 0 && count >= exp.Max
			nextAccepts := !last && ok && rule.Slots[slot+1].accepts(tok.Kind)

			if full || nextAccepts || (last && !ok) {
				if count < exp.Min {
					return 0, p.errorAt(i, exp.Message)
				}
				if rule.Body == Expressions && count > 0 && separated {
					return 0, p.errorAt(i, "expected an expression after ','")
				}
				slot++
				count = 0
				separated = true
				continue
			}
			if !ok {
				if !last {
					return 0, p.errorAt(i, rule.Slots[slot+1].Message)
				}
				return 0, p.errorAt(i, exp.Message)
			}
			if rule.Body == Expressions && !separated {
				msg := exp.Message
				if !last {
					msg = rule.Slots[slot+1].Message
				}
				return 0, p.errorAt(i, msg)
			}
			if !exp.accepts(tok.Kind) {
				return 0, p.errorAt(i, exp.Message)
			}

			n, node, err := p.item(rule.Body, i)
			if err != nil {
				return 0, err
			}
			if node != nil {
				root.Append(node)
			}
			i += 1 + n
			count++

			if rule.Body == Expressions {
				separated = false
				if p.is(i, token.Comma) && exp.Max != 1 {
					i++
					separated = true
				}
			}

		case SlotFixed:
			if !ok || !exp.accepts(tok.Kind) {
				return 0, p.errorAt(i, exp.Message)
			}
			if exp.Leaf {
				leaf, err := p.leaf(tok)
				if err != nil {
					return 0, err
				}
				root.Append(leaf)
			}
			i++
			slot++

		case SlotNested:
			if !ok || !exp.accepts(tok.Kind) {
				return 0, p.errorAt(i, exp.Message)
			}
			n, node, err := p.nested(i)
			if err != nil {
				return 0, err
			}
			root.Append(node)
			i += 1 + n
			slot++
		}
	}
	return i - pos, nil
}

// item parses one element of a Many slot.
func (p *Parser) item(body Body, pos int) (int, *ast.Node, error) {
	if body == Expressions {
		return p.parseExpression(pos)
	}
	return p.statement(pos)
}

// nested parses the construct opened by the token at pos.
func (p *Parser) nested(pos int) (int, *ast.Node, error) {
	switch p.tokens[pos].Kind {
	case token.OpenParenthesis:
		return p.group(pos)
	case token.OpenBrace:
		return p.block(pos)
	}
	return 0, nil, p.errorAt(pos, "expected '(' or '{'")
}

// group parses "( expr, ... )" into a Group node.
func (p *Parser) group(pos int) (int, *ast.Node, error) {
	node := ast.New(ast.Group, p.tokens[pos])
	n, err := p.lookahead(groupRule, pos+1, node)
	if err != nil {
		return 0, nil, err
	}
	return n, node, nil
}

// block parses "{ statement ... }" into a Block node.
func (p *Parser) block(pos int) (int, *ast.Node, error) {
	node := ast.New(ast.Block, p.tokens[pos])
	n, err := p.lookahead(blockRule, pos+1, node)
	if err != nil {
		return 0, nil, err
	}
	return n, node, nil
}

// leaf synthesizes a leaf expression for a single token.
func (p *Parser) leaf(tok token.Token) (*ast.Node, error) {
	switch tok.Kind {
	case token.Identifier:
		return ast.NewExpr(ast.Identifier, types.NewIdentifier(tok.Lexeme), tok), nil
	case token.StringLiteral:
		return ast.NewExpr(ast.StringLiteral, types.NewRawString(tok.Lexeme), tok), nil
	case token.NumberLiteral:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return nil, types.NewExpressionError(fmt.Sprintf("number literal '%s' out of range", tok.Lexeme)).AtLine(tok.Line)
		}
		if err != nil {
			return nil, types.NewSyntaxError(fmt.Sprintf("invalid number literal '%s'", tok.Lexeme)).AtLine(tok.Line)
		}
		return ast.NewExpr(ast.NumberLiteral, types.NewNumber(n), tok), nil
	case token.TrueKeyword, token.FalseKeyword:
		return ast.NewExpr(ast.BooleanLiteral, types.NewBool(tok.Kind == token.TrueKeyword), tok), nil
	case token.NothingKeyword:
		return ast.NewExpr(ast.NothingLiteral, types.Nothing, tok), nil
	case token.StringType, token.NumberType, token.BooleanType:
		return ast.NewExpr(ast.TypeName, types.Nothing, tok), nil
	}
	return nil, types.NewSyntaxError(fmt.Sprintf("unexpected '%s'", tok.Lexeme)).AtLine(tok.Line)
}

// errorAt builds a Syntax error for the token at i.
func (p *Parser) errorAt(i int, msg string) error {
	tok, ok := p.at(i)
	if !ok {
		return types.NewSyntaxError(msg + ", found end of input").AtLine(p.lastLine())
	}
	return types.NewSyntaxError(fmt.Sprintf("%s, found '%s'", msg, tok.Lexeme)).AtLine(tok.Line)
}

func (p *Parser) lastLine() uint {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].Line
}
