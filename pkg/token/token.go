// Package token defines the lexical tokens of the ego language and the
// classification of raw lexemes into token kinds.
package token

import "fmt"

// Kind represents the type of a lexical token.
type Kind int

const (
	Unknown Kind = iota // unclassifiable lexeme

	// Keywords
	FunctionKeyword // fn
	LetKeyword      // let
	IfKeyword       // if
	ElseKeyword     // else
	WhileKeyword    // while
	TrueKeyword     // true
	FalseKeyword    // false
	ImportKeyword   // import
	ReturnKeyword   // return
	BreakKeyword    // break
	NothingKeyword  // nothing

	// Type names
	StringType  // string
	NumberType  // number
	BooleanType // bool

	// Identifiers and literals
	Identifier
	StringLiteral
	NumberLiteral

	// Operators
	AssignmentOperator   // =
	EqualityOperator     // ==
	NotOperator          // !
	InequalityOperator   // !=
	LessThanOperator     // <
	LessEqualOperator    // <=
	GreaterThanOperator  // >
	GreaterEqualOperator // >=
	PlusOperator         // +
	MinusOperator        // -
	MultiplyOperator     // *
	DivideOperator       // /
	PipeOperator         // |
	AmpersandOperator    // &

	// Punctuation
	OpenParenthesis  // (
	CloseParenthesis // )
	OpenBrace        // {
	CloseBrace       // }
	OpenBracket      // [
	CloseBracket     // ]
	Comma            // ,
	EndOfStatement   // ;
	Colon            // :
	Dot              // .

	kindCount
)

var kindNames = [...]string{
	Unknown:              "Unknown",
	FunctionKeyword:      "FunctionKeyword",
	LetKeyword:           "LetKeyword",
	IfKeyword:            "IfKeyword",
	ElseKeyword:          "ElseKeyword",
	WhileKeyword:         "WhileKeyword",
	TrueKeyword:          "TrueKeyword",
	FalseKeyword:         "FalseKeyword",
	ImportKeyword:        "ImportKeyword",
	ReturnKeyword:        "ReturnKeyword",
	BreakKeyword:         "BreakKeyword",
	NothingKeyword:       "NothingKeyword",
	StringType:           "StringType",
	NumberType:           "NumberType",
	BooleanType:          "BooleanType",
	Identifier:           "Identifier",
	StringLiteral:        "StringLiteral",
	NumberLiteral:        "NumberLiteral",
	AssignmentOperator:   "AssignmentOperator",
	EqualityOperator:     "EqualityOperator",
	NotOperator:          "NotOperator",
	InequalityOperator:   "InequalityOperator",
	LessThanOperator:     "LessThanOperator",
	LessEqualOperator:    "LessEqualOperator",
	GreaterThanOperator:  "GreaterThanOperator",
	GreaterEqualOperator: "GreaterEqualOperator",
	PlusOperator:         "PlusOperator",
	MinusOperator:        "MinusOperator",
	MultiplyOperator:     "MultiplyOperator",
	DivideOperator:       "DivideOperator",
	PipeOperator:         "PipeOperator",
	AmpersandOperator:    "AmpersandOperator",
	OpenParenthesis:      "OpenParenthesis",
	CloseParenthesis:     "CloseParenthesis",
	OpenBrace:            "OpenBrace",
	CloseBrace:           "CloseBrace",
	OpenBracket:          "OpenBracket",
	CloseBracket:         "CloseBracket",
	Comma:                "Comma",
	EndOfStatement:       "EndOfStatement",
	Colon:                "Colon",
	Dot:                  "Dot",
}

// String returns the kind name, e.g. "LetKeyword".
func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText serializes a kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsKeyword reports whether k is a keyword or a type name.
func (k Kind) IsKeyword() bool {
	return k >= FunctionKeyword && k <= BooleanType
}

// IsTypeName reports whether k names a value type in an annotation.
func (k Kind) IsTypeName() bool {
	return k == StringType || k == NumberType || k == BooleanType
}

// IsOperator reports whether k is an operator.
func (k Kind) IsOperator() bool {
	return k >= AssignmentOperator && k <= AmpersandOperator
}

// IsLiteral reports whether k starts a literal value.
func (k Kind) IsLiteral() bool {
	switch k {
	case StringLiteral, NumberLiteral, TrueKeyword, FalseKeyword, NothingKeyword:
		return true
	}
	return false
}

// Token is a single lexical token. Line and Column are 1-based and point at
// the first character of the lexeme.
type Token struct {
	Kind   Kind   `yaml:"kind" json:"kind"`
	Lexeme string `yaml:"lexeme" json:"lexeme"`
	Line   uint   `yaml:"line" json:"line"`
	Column uint   `yaml:"column" json:"column"`
}

// New classifies lexeme and returns a token positioned at line:column.
func New(lexeme string, line, column uint) Token {
	return Token{Kind: Classify(lexeme), Lexeme: lexeme, Line: line, Column: column}
}

// String returns a debug-friendly representation, e.g. Identifier(a).
func (t Token) String() string {
	switch t.Kind {
	case Identifier, StringLiteral, NumberLiteral, Unknown:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}

// Set is a set of token kinds.
type Set uint64

// NewSet returns a set holding kinds.
func NewSet(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s |= 1 << uint(k)
	}
	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k Kind) bool {
	return s&(1<<uint(k)) != 0
}

// Union returns the union of s and other.
func (s Set) Union(other Set) Set {
	return s | other
}

// Kinds returns the members of the set in declaration order.
func (s Set) Kinds() []Kind {
	var out []Kind
	for k := Kind(0); k < kindCount; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
