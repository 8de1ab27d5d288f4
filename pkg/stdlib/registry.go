// Package stdlib implements the ego intrinsic functions.
package stdlib

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lemonberrylabs/ego/pkg/types"
)

// StdlibFunc is an intrinsic function signature.
type StdlibFunc func(args []types.Value) (types.Value, error)

// Registry holds the intrinsic functions and serves as a
// runtime.FunctionRegistry.
type Registry struct {
	funcs map[string]StdlibFunc
	out   io.Writer
}

// NewRegistry creates a registry with every intrinsic registered. print
// writes to out, or to os.Stdout when out is nil.
func NewRegistry(out io.Writer) *Registry {
	if out == nil {
		out = os.Stdout
	}
	r := &Registry{
		funcs: make(map[string]StdlibFunc),
		out:   out,
	}
	r.registerPrint()
	r.registerExpressionHelpers()
	r.registerMath()
	r.registerText()
	return r
}

// CallFunction implements runtime.FunctionRegistry.
func (r *Registry) CallFunction(name string, args []types.Value) (types.Value, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return types.Nothing, types.NewReferenceError(name)
	}
	return fn(args)
}

// Register adds a function to the registry.
func (r *Registry) Register(name string, fn StdlibFunc) {
	r.funcs[name] = fn
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// requireArgs checks that the number of args is in range.
func requireArgs(name string, args []types.Value, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return types.NewTypeError(fmt.Sprintf("%s expects %d argument(s), got %d", name, min, len(args)))
		}
		return types.NewTypeError(fmt.Sprintf("%s expects %d-%d arguments, got %d", name, min, max, len(args)))
	}
	return nil
}
