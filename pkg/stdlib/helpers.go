package stdlib

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lemonberrylabs/ego/pkg/types"
)

// registerPrint registers the print intrinsic.
func (r *Registry) registerPrint() {
	r.Register("print", r.stdPrint)
}

// registerExpressionHelpers registers built-in expression helper functions:
// len, type.
func (r *Registry) registerExpressionHelpers() {
	r.Register("len", stdLen)
	r.Register("type", stdType)
}

// stdPrint writes its arguments separated by single spaces and ends the line.
// String values are written without their quotes.
func (r *Registry) stdPrint(args []types.Value) (types.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	if _, err := fmt.Fprintln(r.out, strings.Join(parts, " ")); err != nil {
		return types.Nothing, fmt.Errorf("print: %w", err)
	}
	return types.Nothing, nil
}

// stdLen returns the number of characters in a string.
func stdLen(args []types.Value) (types.Value, error) {
	if err := requireArgs("len", args, 1, 1); err != nil {
		return types.Nothing, err
	}
	if args[0].Type() != types.TypeString {
		return types.Nothing, types.NewTypeError(fmt.Sprintf("len() requires a string argument, got %s", args[0].Type()))
	}
	return types.NewNumber(int64(utf8.RuneCountInString(args[0].AsString()))), nil
}

// stdType returns the type name of its argument.
func stdType(args []types.Value) (types.Value, error) {
	if err := requireArgs("type", args, 1, 1); err != nil {
		return types.Nothing, err
	}
	return types.NewString(args[0].Type().String()), nil
}
