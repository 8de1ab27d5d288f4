package stdlib

import (
	"fmt"
	"math"

	"github.com/lemonberrylabs/ego/pkg/types"
)

// registerMath registers the integer helpers abs, min and max.
func (r *Registry) registerMath() {
	r.Register("abs", mathAbs)
	r.Register("min", mathMin)
	r.Register("max", mathMax)
}

func numberArgs(name string, args []types.Value, n int) ([]int64, error) {
	if err := requireArgs(name, args, n, n); err != nil {
		return nil, err
	}
	nums := make([]int64, n)
	for i, a := range args {
		if a.Type() != types.TypeNumber {
			return nil, types.NewTypeError(fmt.Sprintf("%s() requires number arguments, got %s", name, a.Type()))
		}
		nums[i] = a.AsNumber()
	}
	return nums, nil
}

func mathAbs(args []types.Value) (types.Value, error) {
	nums, err := numberArgs("abs", args, 1)
	if err != nil {
		return types.Nothing, err
	}
	if nums[0] == math.MinInt64 {
		return types.Nothing, types.NewExpressionError("abs() overflows for the smallest number")
	}
	if nums[0] < 0 {
		return types.NewNumber(-nums[0]), nil
	}
	return args[0], nil
}

func mathMin(args []types.Value) (types.Value, error) {
	nums, err := numberArgs("min", args, 2)
	if err != nil {
		return types.Nothing, err
	}
	return types.NewNumber(min(nums[0], nums[1])), nil
}

func mathMax(args []types.Value) (types.Value, error) {
	nums, err := numberArgs("max", args, 2)
	if err != nil {
		return types.Nothing, err
	}
	return types.NewNumber(max(nums[0], nums[1])), nil
}
