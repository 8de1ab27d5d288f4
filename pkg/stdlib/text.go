package stdlib

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/ego/pkg/types"
)

// registerText registers the string helpers upper, lower and substring.
func (r *Registry) registerText() {
	r.Register("upper", textToUpper)
	r.Register("lower", textToLower)
	r.Register("substring", textSubstring)
}

func stringArg(name string, v types.Value) (string, error) {
	if v.Type() != types.TypeString {
		return "", types.NewTypeError(fmt.Sprintf("%s() requires a string argument, got %s", name, v.Type()))
	}
	return v.AsString(), nil
}

func textToUpper(args []types.Value) (types.Value, error) {
	if err := requireArgs("upper", args, 1, 1); err != nil {
		return types.Nothing, err
	}
	s, err := stringArg("upper", args[0])
	if err != nil {
		return types.Nothing, err
	}
	return types.NewString(strings.ToUpper(s)), nil
}

func textToLower(args []types.Value) (types.Value, error) {
	if err := requireArgs("lower", args, 1, 1); err != nil {
		return types.Nothing, err
	}
	s, err := stringArg("lower", args[0])
	if err != nil {
		return types.Nothing, err
	}
	return types.NewString(strings.ToLower(s)), nil
}

// textSubstring returns the characters of source in [start, end). end
// defaults to the length of source; out-of-range bounds are clamped.
func textSubstring(args []types.Value) (types.Value, error) {
	if err := requireArgs("substring", args, 2, 3); err != nil {
		return types.Nothing, err
	}
	s, err := stringArg("substring", args[0])
	if err != nil {
		return types.Nothing, err
	}
	source := []rune(s)

	bounds := make([]int64, 0, 2)
	for _, a := range args[1:] {
		if a.Type() != types.TypeNumber {
			return types.Nothing, types.NewTypeError(fmt.Sprintf("substring() bounds must be numbers, got %s", a.Type()))
		}
		bounds = append(bounds, a.AsNumber())
	}
	start := bounds[0]
	end := int64(len(source))
	if len(bounds) == 2 {
		end = bounds[1]
	}

	start = max(start, 0)
	end = min(end, int64(len(source)))
	if start >= end {
		return types.NewString(""), nil
	}
	return types.NewString(string(source[start:end])), nil
}
