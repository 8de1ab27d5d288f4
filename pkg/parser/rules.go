package parser

import "github.com/lemonberrylabs/ego/pkg/token"

// Body says how the engine parses the items accepted by a Many slot.
type Body int

const (
	Statements Body = iota
	Expressions
)

// SlotKind distinguishes the three kinds of expected slot in a rule.
type SlotKind int

const (
	// SlotFixed matches exactly one token, optionally turning it into a leaf.
	SlotFixed SlotKind = iota
	// SlotNested matches an opener and recurses: ( into a Group, { into a Block.
	SlotNested
	// SlotMany dispatches items until the next slot accepts the current token.
	SlotMany
)

// Expected is one slot of a rule.
type Expected struct {
	Kind    SlotKind
	Accept  token.Set
	Message string

	// Leaf makes a Fixed slot append a leaf node for the matched token.
	Leaf bool
	// Min and Max bound the number of items a Many slot takes. Max 0 means
	// unbounded.
	Min int
	Max int
}

// Fixed expects one token of the given kinds and produces nothing.
func Fixed(msg string, kinds ...token.Kind) Expected {
	return Expected{Kind: SlotFixed, Accept: token.NewSet(kinds...), Message: msg}
}

// Leaf expects one token of the given kinds and attaches it as a leaf.
func Leaf(msg string, kinds ...token.Kind) Expected {
	return Expected{Kind: SlotFixed, Accept: token.NewSet(kinds...), Message: msg, Leaf: true}
}

// Nested expects opener and parses the construct it opens.
func Nested(msg string, opener token.Kind) Expected {
	return Expected{Kind: SlotNested, Accept: token.NewSet(opener), Message: msg}
}

// Many repeats items accepted by set.
func Many(msg string, set token.Set) Expected {
	return Expected{Kind: SlotMany, Accept: set, Message: msg}
}

// One takes exactly one item accepted by set.
func One(msg string, set token.Set) Expected {
	return Expected{Kind: SlotMany, Accept: set, Message: msg, Min: 1, Max: 1}
}

// Optional takes at most one item accepted by set.
func Optional(msg string, set token.Set) Expected {
	return Expected{Kind: SlotMany, Accept: set, Message: msg, Max: 1}
}

func (e Expected) accepts(k token.Kind) bool {
	return e.Accept.Has(k)
}

// Rule is a declarative pattern for one construct. Slots are matched
// against the tokens that follow the construct's triggering token.
type Rule struct {
	Name  string
	Body  Body
	Slots []Expected
}

var (
	// anything is accepted by statement bodies; dispatch reports bad tokens.
	anything = func() token.Set {
		var s token.Set
		for k := token.Unknown; k <= token.Dot; k++ {
			s |= token.NewSet(k)
		}
		return s
	}()

	// operand starts an expression.
	operand = token.NewSet(
		token.NumberLiteral, token.StringLiteral, token.TrueKeyword, token.FalseKeyword,
		token.NothingKeyword, token.Identifier, token.OpenParenthesis,
		token.MinusOperator, token.NotOperator,
	)

	// value starts a single-value slot; Unknown is let through so the
	// expression parser reports it.
	value = operand.Union(token.NewSet(token.Unknown))

	typeNames = token.NewSet(token.StringType, token.NumberType, token.BooleanType)
)

var (
	programRule = Rule{
		Name: "program",
		Body: Statements,
		Slots: []Expected{
			Many("expected a statement", anything),
		},
	}

	blockRule = Rule{
		Name: "block",
		Body: Statements,
		Slots: []Expected{
			Many("expected a statement", anything),
			Fixed("expected '}' to close block", token.CloseBrace),
		},
	}

	groupRule = Rule{
		Name: "group",
		Body: Expressions,
		Slots: []Expected{
			Many("expected an expression", anything),
			Fixed("expected ')' to close group", token.CloseParenthesis),
		},
	}

	callStatementRule = Rule{
		Name: "function_call",
		Body: Expressions,
		Slots: []Expected{
			Fixed("expected '(' after function name", token.OpenParenthesis),
			Many("expected an argument", anything),
			Fixed("expected ')' to close argument list", token.CloseParenthesis),
			Fixed("expected ';' after function call", token.EndOfStatement),
		},
	}

	callExpressionRule = Rule{
		Name: "function_call_expression",
		Body: Expressions,
		Slots: []Expected{
			Fixed("expected '(' after function name", token.OpenParenthesis),
			Many("expected an argument", anything),
			Fixed("expected ')' to close argument list", token.CloseParenthesis),
		},
	}

	assignmentRule = Rule{
		Name: "assignment_statement",
		Body: Expressions,
		Slots: []Expected{
			Leaf("expected a variable name after 'let'", token.Identifier),
			Fixed("expected '=' in declaration", token.AssignmentOperator),
			One("expected a value in declaration", value),
			Fixed("expected ';' after declaration", token.EndOfStatement),
		},
	}

	annotatedAssignmentRule = Rule{
		Name: "annotated_assignment_statement",
		Body: Expressions,
		Slots: []Expected{
			Leaf("expected a variable name after 'let'", token.Identifier),
			Fixed("expected ':' before type name", token.Colon),
			Leaf("expected a type name (string, number, bool)", typeNames.Kinds()...),
			Fixed("expected '=' in declaration", token.AssignmentOperator),
			One("expected a value in declaration", value),
			Fixed("expected ';' after declaration", token.EndOfStatement),
		},
	}

	reassignmentRule = Rule{
		Name: "reassignment",
		Body: Expressions,
		Slots: []Expected{
			Fixed("expected '=' in assignment", token.AssignmentOperator),
			One("expected a value in assignment", value),
			Fixed("expected ';' after assignment", token.EndOfStatement),
		},
	}

	ifRule = Rule{
		Name: "if_statement",
		Body: Statements,
		Slots: []Expected{
			Nested("expected '(' after 'if'", token.OpenParenthesis),
			Nested("expected '{' to open if body", token.OpenBrace),
		},
	}

	whileRule = Rule{
		Name: "while_statement",
		Body: Statements,
		Slots: []Expected{
			Nested("expected '(' after 'while'", token.OpenParenthesis),
			Nested("expected '{' to open while body", token.OpenBrace),
		},
	}

	functionRule = Rule{
		Name: "function_declaration",
		Body: Statements,
		Slots: []Expected{
			Leaf("expected a function name after 'fn'", token.Identifier),
			Nested("expected '(' to open parameter list", token.OpenParenthesis),
			Nested("expected '{' to open function body", token.OpenBrace),
		},
	}

	returnRule = Rule{
		Name: "return_statement",
		Body: Expressions,
		Slots: []Expected{
			Optional("expected a return value", value),
			Fixed("expected ';' after return", token.EndOfStatement),
		},
	}

	breakRule = Rule{
		Name: "break_statement",
		Body: Statements,
		Slots: []Expected{
			Fixed("expected ';' after break", token.EndOfStatement),
		},
	}

	importRule = Rule{
		Name: "import_statement",
		Body: Statements,
		Slots: []Expected{
			Leaf("expected a module name string after 'import'", token.StringLiteral),
			Fixed("expected ';' after import", token.EndOfStatement),
		},
	}
)
