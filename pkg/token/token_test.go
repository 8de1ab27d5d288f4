package token

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		lexeme string
		want   Kind
	}{
		{"let", LetKeyword},
		{"fn", FunctionKeyword},
		{"nothing", NothingKeyword},
		{"bool", BooleanType},
		{"==", EqualityOperator},
		{"!=", InequalityOperator},
		{";", EndOfStatement},
		{".", Dot},
		{`"hi"`, StringLiteral},
		{`""`, StringLiteral},
		{`"`, Unknown},
		{`"abc`, Unknown},
		{"42", NumberLiteral},
		{"3.14", NumberLiteral},
		{"3.", Unknown},
		{".5", Unknown},
		{"a", Identifier},
		{"_tmp9", Identifier},
		{"lets", Identifier},
		{"9a", Unknown},
		{"@", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			if got := Classify(tt.lexeme); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.lexeme, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{LetKeyword, "LetKeyword"},
		{AssignmentOperator, "AssignmentOperator"},
		{EndOfStatement, "EndOfStatement"},
		{OpenParenthesis, "OpenParenthesis"},
		{Unknown, "Unknown"},
		{Kind(999), "Kind(999)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestKindNamesComplete(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		if kindNames[k] == "" {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}

func TestPredicates(t *testing.T) {
	if !IfKeyword.IsKeyword() || Identifier.IsKeyword() {
		t.Error("IsKeyword mismatch")
	}
	if !NumberType.IsTypeName() || NumberLiteral.IsTypeName() {
		t.Error("IsTypeName mismatch")
	}
	if !AmpersandOperator.IsOperator() || OpenParenthesis.IsOperator() {
		t.Error("IsOperator mismatch")
	}
	if !NothingKeyword.IsLiteral() || Identifier.IsLiteral() {
		t.Error("IsLiteral mismatch")
	}
}

func TestTokenString(t *testing.T) {
	if got := New("a", 1, 1).String(); got != "Identifier(a)" {
		t.Errorf("got %q", got)
	}
	if got := New(";", 1, 1).String(); got != "EndOfStatement" {
		t.Errorf("got %q", got)
	}
}

func TestSet(t *testing.T) {
	s := NewSet(Identifier, NumberLiteral)
	if !s.Has(Identifier) || !s.Has(NumberLiteral) || s.Has(StringLiteral) {
		t.Errorf("unexpected membership: %v", s.Kinds())
	}
	u := s.Union(NewSet(StringLiteral))
	if got := u.Kinds(); len(got) != 3 || got[0] != Identifier || got[1] != StringLiteral || got[2] != NumberLiteral {
		t.Errorf("Union().Kinds() = %v", got)
	}
}
