// Package ast defines the syntax tree produced by the ego parser and
// consumed by the evaluator and the bytecode compiler. Every node has the
// same shape; Tag says what kind of construct it is and, for expressions,
// Expr refines it.
package ast

import (
	"encoding/json"
	"strings"

	"github.com/lemonberrylabs/ego/pkg/token"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// Tag identifies the construct a node represents.
type Tag int

const (
	Root Tag = iota
	Block
	Group
	FunctionCall
	IfStatement
	VariableDeclaration
	Expression
	WhileStatement
	Assignment
	FunctionDeclaration
	ReturnStatement
	BreakStatement
	ImportStatement
)

var tagNames = [...]string{
	Root:                "Root",
	Block:               "Block",
	Group:               "Group",
	FunctionCall:        "FunctionCall",
	IfStatement:         "IfStatement",
	VariableDeclaration: "VariableDeclaration",
	Expression:          "Expression",
	WhileStatement:      "WhileStatement",
	Assignment:          "Assignment",
	FunctionDeclaration: "FunctionDeclaration",
	ReturnStatement:     "ReturnStatement",
	BreakStatement:      "BreakStatement",
	ImportStatement:     "ImportStatement",
}

func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Unknown"
}

// ExprKind refines an Expression node.
type ExprKind int

const (
	NoExpr ExprKind = iota
	StringLiteral
	NumberLiteral
	BooleanLiteral
	Identifier
	BinaryOperation
	NothingLiteral
	UnaryOperation
	TypeName
)

var exprNames = [...]string{
	NoExpr:          "",
	StringLiteral:   "StringLiteral",
	NumberLiteral:   "NumberLiteral",
	BooleanLiteral:  "BooleanLiteral",
	Identifier:      "Identifier",
	BinaryOperation: "BinaryOperation",
	NothingLiteral:  "NothingLiteral",
	UnaryOperation:  "UnaryOperation",
	TypeName:        "TypeName",
}

func (k ExprKind) String() string {
	if k >= 0 && int(k) < len(exprNames) {
		return exprNames[k]
	}
	return "Unknown"
}

// Node is a single syntax tree node.
//
// Token is the token that introduced the node: the keyword of a statement,
// the opener of a Block or Group, the literal or identifier of a leaf, and
// the operator of a Binary or Unary operation.
type Node struct {
	Tag      Tag
	Expr     ExprKind
	Children []*Node
	Value    types.Value
	Token    token.Token
}

// New creates a node with no children.
func New(tag Tag, tok token.Token) *Node {
	return &Node{Tag: tag, Token: tok}
}

// NewExpr creates an Expression node of the given kind.
func NewExpr(kind ExprKind, value types.Value, tok token.Token) *Node {
	return &Node{Tag: Expression, Expr: kind, Value: value, Token: tok}
}

// NewBinary creates a BinaryOperation with op as its operator token.
func NewBinary(op token.Token, left, right *Node) *Node {
	return &Node{Tag: Expression, Expr: BinaryOperation, Token: op, Children: []*Node{left, right}}
}

// NewUnary creates a UnaryOperation with op as its operator token.
func NewUnary(op token.Token, operand *Node) *Node {
	return &Node{Tag: Expression, Expr: UnaryOperation, Token: op, Children: []*Node{operand}}
}

// Append adds children to n in order.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Line returns the source line of the node's token.
func (n *Node) Line() uint {
	return n.Token.Line
}

// Is reports whether n is an Expression of the given kind.
func (n *Node) Is(kind ExprKind) bool {
	return n != nil && n.Tag == Expression && n.Expr == kind
}

// Walk calls fn for n and its descendants in depth-first order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// String renders the node in a compact parenthesized form, e.g.
// "((1 + 2) + 3)" for an expression or "VariableDeclaration(a, "hi")".
func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	if n.Tag == Expression {
		switch n.Expr {
		case BinaryOperation:
			sb.WriteByte('(')
			n.Children[0].format(sb)
			sb.WriteString(" " + n.Token.Lexeme + " ")
			n.Children[1].format(sb)
			sb.WriteByte(')')
			return
		case UnaryOperation:
			sb.WriteString(n.Token.Lexeme)
			n.Children[0].format(sb)
			return
		case TypeName:
			sb.WriteString(":" + n.Token.Lexeme)
			return
		default:
			sb.WriteString(n.Value.Literal())
			return
		}
	}
	sb.WriteString(n.Tag.String())
	sb.WriteByte('(')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteString(", ")
		}
		c.format(sb)
	}
	sb.WriteByte(')')
}

// dump is the serialized form of a node.
type dump struct {
	Tag      string  `yaml:"tag" json:"tag"`
	Expr     string  `yaml:"expr,omitempty" json:"expr,omitempty"`
	Value    string  `yaml:"value,omitempty" json:"value,omitempty"`
	Operator string  `yaml:"operator,omitempty" json:"operator,omitempty"`
	Line     uint    `yaml:"line,omitempty" json:"line,omitempty"`
	Children []*Node `yaml:"children,omitempty" json:"children,omitempty"`
}

func (n *Node) dump() dump {
	d := dump{Tag: n.Tag.String(), Expr: n.Expr.String(), Line: n.Token.Line, Children: n.Children}
	switch n.Expr {
	case BinaryOperation, UnaryOperation:
		d.Operator = n.Token.Lexeme
	case TypeName:
		d.Value = n.Token.Lexeme
	case NoExpr:
	default:
		d.Value = n.Value.Literal()
	}
	return d
}

// MarshalYAML implements yaml.Marshaler for tree dumps.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.dump(), nil
}

// MarshalJSON implements json.Marshaler with the same layout as the YAML dump.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.dump())
}
