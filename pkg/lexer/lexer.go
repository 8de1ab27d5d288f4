// Package lexer turns ego source text into a sequence of position-tagged
// tokens. It never fails: text it cannot classify becomes an Unknown token
// and is reported by the parser.
package lexer

import (
	"strings"

	"github.com/lemonberrylabs/ego/pkg/token"
)

// state is the character-level state of the lexer.
type state int

const (
	stateNormal state = iota
	stateInString
	stateInComment
	stateInFloat
)

func (s state) String() string {
	switch s {
	case stateNormal:
		return "Normal"
	case stateInString:
		return "InString"
	case stateInComment:
		return "InComment"
	case stateInFloat:
		return "InFloatAccumulation"
	default:
		return "unknown"
	}
}

// Lexer tokenizes an ego source string.
type Lexer struct {
	input  []rune
	pos    int
	line   uint
	column uint
	state  state

	// pending lexeme and the position of its first character
	acc     strings.Builder
	accLine uint
	accCol  uint

	tokens []token.Token
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: []rune(input), line: 1, column: 1}
}

// Tokenize is a shorthand for New(source).Tokenize().
func Tokenize(source string) []token.Token {
	return New(source).Tokenize()
}

// Tokenize scans the entire input and returns all tokens in source order.
func (l *Lexer) Tokenize() []token.Token {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch l.state {
		case stateInString:
			l.stepString(ch)
		case stateInComment:
			l.stepComment(ch)
		case stateInFloat:
			l.stepFloat(ch)
		default:
			l.stepNormal(ch)
		}
	}
	// An unterminated string or trailing word is folded into a final flush.
	l.flush()
	l.state = stateNormal
	return l.tokens
}

func (l *Lexer) stepNormal(ch rune) {
	switch {
	case ch == '"':
		l.flush()
		l.begin()
		l.acc.WriteRune(ch)
		l.advance()
		l.state = stateInString

	case ch == '/':
		l.flush()
		if l.peek() == '/' {
			l.advance()
			l.advance()
			l.state = stateInComment
			return
		}
		l.emit(1)

	case ch == '=' || ch == '<' || ch == '>' || ch == '!':
		l.flush()
		if l.peek() == '=' {
			l.emit(2)
		} else {
			l.emit(1)
		}

	case strings.ContainsRune("+-*|&", ch), strings.ContainsRune("(){}[],;:", ch):
		l.flush()
		l.emit(1)

	case ch == '.':
		if token.IsDigits(l.acc.String()) {
			l.acc.WriteRune(ch)
			l.advance()
			l.state = stateInFloat
			return
		}
		l.flush()
		l.emit(1)

	case isSpace(ch):
		l.flush()
		l.advance()

	case isDigit(ch):
		l.accumulate(ch)
		if token.IsDigits(l.acc.String()) {
			if next := l.current(); !isDigit(next) && next != '.' {
				l.flush()
			}
		}

	default:
		l.accumulate(ch)
	}
}

func (l *Lexer) stepString(ch rune) {
	l.acc.WriteRune(ch)
	l.advance()
	if ch == '"' {
		l.flush()
		l.state = stateNormal
	}
}

func (l *Lexer) stepComment(ch rune) {
	if ch == '\n' {
		// the newline itself is handled as whitespace
		l.state = stateNormal
		return
	}
	l.advance()
}

func (l *Lexer) stepFloat(ch rune) {
	if isDigit(ch) {
		l.acc.WriteRune(ch)
		l.advance()
		return
	}
	l.flush()
	l.state = stateNormal
}

// accumulate appends ch to the pending lexeme, recording the start position
// when the lexeme is new.
func (l *Lexer) accumulate(ch rune) {
	if l.acc.Len() == 0 {
		l.begin()
	}
	l.acc.WriteRune(ch)
	l.advance()
}

func (l *Lexer) begin() {
	l.accLine = l.line
	l.accCol = l.column
}

// flush emits the pending lexeme, if any.
func (l *Lexer) flush() {
	if l.acc.Len() == 0 {
		return
	}
	l.tokens = append(l.tokens, token.New(l.acc.String(), l.accLine, l.accCol))
	l.acc.Reset()
}

// emit emits the next n characters as one token.
func (l *Lexer) emit(n int) {
	line, col := l.line, l.column
	lexeme := string(l.input[l.pos : l.pos+n])
	for i := 0; i < n; i++ {
		l.advance()
	}
	l.tokens = append(l.tokens, token.New(lexeme, line, col))
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
