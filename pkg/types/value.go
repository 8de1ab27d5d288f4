// Package types defines the runtime values and diagnostics shared by the ego
// parser and evaluator. Values are a small tagged union: nothing, string,
// number (int64), bool, identifier and function.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueType represents the type of an ego value.
type ValueType int

const (
	TypeNothing    ValueType = iota
	TypeString               // string, possibly still quoted
	TypeNumber               // int64
	TypeBool                 // bool
	TypeIdentifier           // unresolved name
	TypeFunction             // declared fn
)

// String returns the ego type name as returned by the type() intrinsic.
func (t ValueType) String() string {
	switch t {
	case TypeNothing:
		return "nothing"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeIdentifier:
		return "identifier"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// TypeFromName maps a type annotation keyword to its value type.
func TypeFromName(name string) (ValueType, bool) {
	switch name {
	case "string":
		return TypeString, true
	case "number":
		return TypeNumber, true
	case "bool":
		return TypeBool, true
	case "nothing":
		return TypeNothing, true
	}
	return TypeNothing, false
}

// Function is a user-declared function. Body is the declaration's body node
// and Env the scopes visible where it was declared, both opaque to this
// package.
type Function struct {
	Name   string
	Params []string
	Body   interface{}
	Env    interface{}
}

// Value represents an ego runtime value.
type Value struct {
	typ     ValueType
	text    string // string contents or identifier name
	raw     bool   // text still carries its delimiting quotes
	numVal  int64
	boolVal bool
	fnVal   *Function
}

// Nothing is the singleton nothing value.
var Nothing = Value{typ: TypeNothing}

// NewString creates a string value from unquoted text.
func NewString(v string) Value {
	return Value{typ: TypeString, text: v}
}

// NewRawString creates a string value from a quoted lexeme such as "hi".
func NewRawString(lexeme string) Value {
	return Value{typ: TypeString, text: lexeme, raw: true}
}

// NewNumber creates a number value.
func NewNumber(v int64) Value {
	return Value{typ: TypeNumber, numVal: v}
}

// NewBool creates a boolean value.
func NewBool(v bool) Value {
	return Value{typ: TypeBool, boolVal: v}
}

// NewIdentifier creates an identifier value naming a variable.
func NewIdentifier(name string) Value {
	return Value{typ: TypeIdentifier, text: name}
}

// NewFunction creates a function value.
func NewFunction(fn *Function) Value {
	return Value{typ: TypeFunction, fnVal: fn}
}

// Type returns the value's type.
func (v Value) Type() ValueType {
	return v.typ
}

// IsNothing returns true if the value is nothing.
func (v Value) IsNothing() bool {
	return v.typ == TypeNothing
}

// IsRaw reports whether a string value still carries its quotes.
func (v Value) IsRaw() bool {
	return v.typ == TypeString && v.raw
}

// AsString returns the string contents without delimiting quotes. Panics if
// not a string.
func (v Value) AsString() string {
	if v.typ != TypeString {
		panic(fmt.Sprintf("AsString called on %s value", v.typ))
	}
	if v.raw {
		return unquote(v.text)
	}
	return v.text
}

// AsNumber returns the number value. Panics if not a number.
func (v Value) AsNumber() int64 {
	if v.typ != TypeNumber {
		panic(fmt.Sprintf("AsNumber called on %s value", v.typ))
	}
	return v.numVal
}

// AsBool returns the boolean value. Panics if not a bool.
func (v Value) AsBool() bool {
	if v.typ != TypeBool {
		panic(fmt.Sprintf("AsBool called on %s value", v.typ))
	}
	return v.boolVal
}

// AsIdentifier returns the identifier name. Panics if not an identifier.
func (v Value) AsIdentifier() string {
	if v.typ != TypeIdentifier {
		panic(fmt.Sprintf("AsIdentifier called on %s value", v.typ))
	}
	return v.text
}

// AsFunction returns the function. Panics if not a function.
func (v Value) AsFunction() *Function {
	if v.typ != TypeFunction {
		panic(fmt.Sprintf("AsFunction called on %s value", v.typ))
	}
	return v.fnVal
}

// Equal tests equality between two values. Strings compare by contents
// regardless of quoting; functions compare by identity.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeNothing:
		return true
	case TypeString:
		return v.AsString() == other.AsString()
	case TypeNumber:
		return v.numVal == other.numVal
	case TypeBool:
		return v.boolVal == other.boolVal
	case TypeIdentifier:
		return v.text == other.text
	case TypeFunction:
		return v.fnVal == other.fnVal
	}
	return false
}

// String renders the value the way print shows it.
func (v Value) String() string {
	switch v.typ {
	case TypeNothing:
		return "nothing"
	case TypeString:
		return v.AsString()
	case TypeNumber:
		return strconv.FormatInt(v.numVal, 10)
	case TypeBool:
		return strconv.FormatBool(v.boolVal)
	case TypeIdentifier:
		return v.text
	case TypeFunction:
		return "<fn " + v.fnVal.Name + ">"
	}
	return "<unknown>"
}

// Literal returns the value in source form: strings are quoted.
func (v Value) Literal() string {
	if v.typ == TypeString {
		return `"` + v.AsString() + `"`
	}
	return v.String()
}

// MarshalJSON converts a Value to JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeNothing:
		return []byte("null"), nil
	case TypeString:
		return json.Marshal(v.AsString())
	case TypeNumber:
		return json.Marshal(v.numVal)
	case TypeBool:
		return json.Marshal(v.boolVal)
	case TypeIdentifier, TypeFunction:
		return json.Marshal(v.String())
	}
	return nil, fmt.Errorf("cannot marshal unknown type %d", v.typ)
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
