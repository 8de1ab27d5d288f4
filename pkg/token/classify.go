package token

var exact = map[string]Kind{
	"fn":      FunctionKeyword,
	"let":     LetKeyword,
	"if":      IfKeyword,
	"else":    ElseKeyword,
	"while":   WhileKeyword,
	"true":    TrueKeyword,
	"false":   FalseKeyword,
	"import":  ImportKeyword,
	"return":  ReturnKeyword,
	"break":   BreakKeyword,
	"nothing": NothingKeyword,
	"string":  StringType,
	"number":  NumberType,
	"bool":    BooleanType,

	"=":  AssignmentOperator,
	"==": EqualityOperator,
	"!":  NotOperator,
	"!=": InequalityOperator,
	"<":  LessThanOperator,
	"<=": LessEqualOperator,
	">":  GreaterThanOperator,
	">=": GreaterEqualOperator,
	"+":  PlusOperator,
	"-":  MinusOperator,
	"*":  MultiplyOperator,
	"/":  DivideOperator,
	"|":  PipeOperator,
	"&":  AmpersandOperator,

	"(": OpenParenthesis,
	")": CloseParenthesis,
	"{": OpenBrace,
	"}": CloseBrace,
	"[": OpenBracket,
	"]": CloseBracket,
	",": Comma,
	";": EndOfStatement,
	":": Colon,
	".": Dot,
}

// Classify maps a lexeme to its token kind. Exact keyword, operator and
// punctuation lexemes win; otherwise the lexeme is classified by shape.
func Classify(lexeme string) Kind {
	if k, ok := exact[lexeme]; ok {
		return k
	}
	switch {
	case isQuoted(lexeme):
		return StringLiteral
	case IsNumber(lexeme):
		return NumberLiteral
	case isIdentifier(lexeme):
		return Identifier
	default:
		return Unknown
	}
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// IsNumber reports whether s matches ^\d+(\.\d+)?$.
func IsNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return false
	}
	if i == len(s) {
		return true
	}
	if s[i] != '.' {
		return false
	}
	i++
	frac := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i > frac && i == len(s)
}

// IsDigits reports whether s is a non-empty run of decimal digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
