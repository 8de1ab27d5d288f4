package runtime

import (
	"context"
	"fmt"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// DefaultMaxSteps is the default number of statements a single run may execute.
const DefaultMaxSteps = 100_000

// DefaultMaxCallDepth is the default maximum depth of nested function calls.
const DefaultMaxCallDepth = 64

// FlowControl represents special flow control signals during execution.
type FlowControl int

const (
	FlowNone   FlowControl = iota
	FlowBreak              // leave the innermost while
	FlowReturn             // return a value from the current function
)

// StepResult is the result of executing a single statement.
type StepResult struct {
	Flow  FlowControl
	Value types.Value // return value for FlowReturn
}

// FunctionRegistry provides the intrinsic functions a program can call.
type FunctionRegistry interface {
	// CallFunction calls a named function with the given arguments.
	CallFunction(name string, args []types.Value) (types.Value, error)
}

// Options bounds a single execution. Zero values select the defaults.
type Options struct {
	MaxSteps     int
	MaxCallDepth int
}

func (o Options) withDefaults() Options {
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = DefaultMaxCallDepth
	}
	return o
}

// Engine executes an ego syntax tree.
type Engine struct {
	tree   *ast.Node
	funcs  FunctionRegistry
	opts   Options
	scopes *ScopeStack

	stepCount int
	callDepth int
	loopDepth int
}

// NewEngine creates a new execution engine for tree.
func NewEngine(tree *ast.Node, funcs FunctionRegistry, opts Options) *Engine {
	return &Engine{
		tree:   tree,
		funcs:  funcs,
		opts:   opts.withDefaults(),
		scopes: NewScopeStack(),
	}
}

// Scopes returns the engine's scope stack.
func (e *Engine) Scopes() *ScopeStack {
	return e.scopes
}

// Steps returns the number of statements executed so far.
func (e *Engine) Steps() int {
	return e.stepCount
}

// Exec runs the program's top-level statements in the global scope. It
// stops at the first error.
func (e *Engine) Exec(ctx context.Context) error {
	if e.tree == nil || e.tree.Tag != ast.Root {
		return types.NewSyntaxError("program has no root")
	}
	e.scopes = NewScopeStack()
	e.stepCount, e.callDepth, e.loopDepth = 0, 0, 0

	_, err := e.executeStatements(ctx, e.tree.Children)
	return err
}

// executeStatements runs statements in order until one signals a flow change.
func (e *Engine) executeStatements(ctx context.Context, stmts []*ast.Node) (StepResult, error) {
	for _, stmt := range stmts {
		select {
		case <-ctx.Done():
			return StepResult{}, ctx.Err()
		default:
		}

		if err := e.step(); err != nil {
			return StepResult{}, at(err, stmt)
		}

		result, err := e.executeStatement(ctx, stmt)
		if err != nil {
			return StepResult{}, at(err, stmt)
		}
		if result.Flow != FlowNone {
			return result, nil
		}
	}
	return StepResult{Flow: FlowNone}, nil
}

// step counts one unit of work against the step budget.
func (e *Engine) step() error {
	e.stepCount++
	if e.stepCount > e.opts.MaxSteps {
		return types.NewStepLimitError(e.opts.MaxSteps)
	}
	return nil
}

// executeStatement runs a single statement.
func (e *Engine) executeStatement(ctx context.Context, stmt *ast.Node) (StepResult, error) {
	switch stmt.Tag {
	case ast.Block:
		return e.executeBlock(ctx, stmt)

	case ast.FunctionCall:
		_, err := e.call(ctx, stmt)
		return StepResult{}, err

	case ast.VariableDeclaration:
		return StepResult{}, e.executeDeclaration(ctx, stmt)

	case ast.Assignment:
		val, err := e.eval(ctx, stmt.Children[1])
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{}, e.scopes.Set(stmt.Children[0].Value.AsIdentifier(), val)

	case ast.IfStatement:
		ok, err := e.condition(ctx, stmt.Children[0])
		if err != nil || !ok {
			return StepResult{}, err
		}
		return e.executeBlock(ctx, stmt.Children[1])

	case ast.WhileStatement:
		return e.executeWhile(ctx, stmt)

	case ast.FunctionDeclaration:
		return StepResult{}, e.executeFunctionDeclaration(stmt)

	case ast.ReturnStatement:
		if e.callDepth == 0 {
			return StepResult{}, types.NewSyntaxError("return outside of a function")
		}
		val := types.Nothing
		if len(stmt.Children) > 0 {
			v, err := e.eval(ctx, stmt.Children[0])
			if err != nil {
				return StepResult{}, err
			}
			val = v
		}
		return StepResult{Flow: FlowReturn, Value: val}, nil

	case ast.BreakStatement:
		if e.loopDepth == 0 {
			return StepResult{}, types.NewSyntaxError("break outside of a loop")
		}
		return StepResult{Flow: FlowBreak}, nil

	case ast.ImportStatement:
		// Imports are accepted and ignored.
		return StepResult{}, nil

	case ast.Expression, ast.Group:
		_, err := e.eval(ctx, stmt)
		return StepResult{}, err
	}

	return StepResult{}, types.NewSyntaxError(fmt.Sprintf("unexpected %s in statement position", stmt.Tag))
}

// executeBlock runs a block's statements in a fresh scope.
func (e *Engine) executeBlock(ctx context.Context, block *ast.Node) (StepResult, error) {
	e.scopes.Push()
	defer e.scopes.Pop()
	return e.executeStatements(ctx, block.Children)
}

// executeDeclaration binds a new variable in the innermost scope.
func (e *Engine) executeDeclaration(ctx context.Context, stmt *ast.Node) error {
	name := stmt.Children[0].Value.AsIdentifier()
	valueNode := stmt.Children[len(stmt.Children)-1]

	val, err := e.eval(ctx, valueNode)
	if err != nil {
		return err
	}

	if len(stmt.Children) == 3 {
		annotation := stmt.Children[1].Token.Lexeme
		want, ok := types.TypeFromName(annotation)
		if !ok {
			return types.NewTypeError(fmt.Sprintf("unknown type '%s'", annotation))
		}
		if val.Type() != want {
			return types.NewTypeError(
				fmt.Sprintf("cannot assign %s to '%s' declared as %s", val.Type(), name, want))
		}
	}

	return e.scopes.Declare(name, val)
}

// executeWhile runs a while loop. Every iteration counts as a step so that
// an empty body still hits the step limit.
func (e *Engine) executeWhile(ctx context.Context, stmt *ast.Node) (StepResult, error) {
	e.loopDepth++
	defer func() { e.loopDepth-- }()

	for {
		ok, err := e.condition(ctx, stmt.Children[0])
		if err != nil {
			return StepResult{}, err
		}
		if !ok {
			return StepResult{Flow: FlowNone}, nil
		}

		result, err := e.executeBlock(ctx, stmt.Children[1])
		if err != nil {
			return StepResult{}, err
		}
		switch result.Flow {
		case FlowBreak:
			return StepResult{Flow: FlowNone}, nil
		case FlowReturn:
			return result, nil
		}

		if err := e.step(); err != nil {
			return StepResult{}, err
		}
		select {
		case <-ctx.Done():
			return StepResult{}, ctx.Err()
		default:
		}
	}
}

// executeFunctionDeclaration binds a Function value for a fn statement. The
// function closes over the scopes open at the declaration.
func (e *Engine) executeFunctionDeclaration(stmt *ast.Node) error {
	name := stmt.Children[0].Value.AsIdentifier()
	params := stmt.Children[1].Children
	fn := &types.Function{
		Name:   name,
		Params: make([]string, len(params)),
		Body:   stmt.Children[2],
		Env:    e.scopes.Capture(),
	}
	for i, p := range params {
		fn.Params[i] = p.Value.AsIdentifier()
	}
	return e.scopes.Declare(name, types.NewFunction(fn))
}

// condition evaluates a condition group, which must yield a bool.
func (e *Engine) condition(ctx context.Context, group *ast.Node) (bool, error) {
	val, err := e.eval(ctx, group)
	if err != nil {
		return false, err
	}
	if val.Type() != types.TypeBool {
		return false, types.NewTypeError(fmt.Sprintf("condition must be a bool, got %s", val.Type()))
	}
	return val.AsBool(), nil
}

// call evaluates a FunctionCall node. User-declared functions shadow
// intrinsics of the same name.
func (e *Engine) call(ctx context.Context, node *ast.Node) (types.Value, error) {
	name := node.Children[0].Value.AsIdentifier()

	args := make([]types.Value, 0, len(node.Children)-1)
	for _, argNode := range node.Children[1:] {
		v, err := e.eval(ctx, argNode)
		if err != nil {
			return types.Nothing, err
		}
		args = append(args, v)
	}

	if v, err := e.scopes.Get(name); err == nil {
		if v.Type() != types.TypeFunction {
			return types.Nothing, types.NewTypeError(fmt.Sprintf("'%s' is a %s, not a function", name, v.Type()))
		}
		return e.callFunction(ctx, v.AsFunction(), args)
	}

	if e.funcs == nil {
		return types.Nothing, types.NewReferenceError(name)
	}
	return e.funcs.CallFunction(name, args)
}

// callFunction runs a user-declared function in a new scope pushed onto the
// scopes captured at its declaration. The caller's locals are not visible.
func (e *Engine) callFunction(ctx context.Context, fn *types.Function, args []types.Value) (types.Value, error) {
	if len(args) != len(fn.Params) {
		return types.Nothing, types.NewTypeError(
			fmt.Sprintf("%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args)))
	}

	e.callDepth++
	defer func() { e.callDepth-- }()
	if e.callDepth > e.opts.MaxCallDepth {
		return types.Nothing, types.NewCallDepthError(e.opts.MaxCallDepth)
	}

	// A loop in the caller cannot be broken from inside the callee.
	savedLoops := e.loopDepth
	e.loopDepth = 0
	defer func() { e.loopDepth = savedLoops }()

	env, ok := fn.Env.(*ScopeStack)
	if !ok {
		env = NewScopeStack()
	}
	caller := e.scopes
	e.scopes = env.Capture()
	defer func() { e.scopes = caller }()

	e.scopes.Push()
	for i, param := range fn.Params {
		if err := e.scopes.Declare(param, args[i]); err != nil {
			return types.Nothing, err
		}
	}

	body, ok := fn.Body.(*ast.Node)
	if !ok {
		return types.Nothing, types.NewTypeError(fmt.Sprintf("'%s' has no body", fn.Name))
	}
	result, err := e.executeStatements(ctx, body.Children)
	if err != nil {
		return types.Nothing, err
	}
	if result.Flow == FlowReturn {
		return result.Value, nil
	}
	return types.Nothing, nil
}

// at attaches the node's line to a diagnostic that has none.
func at(err error, node *ast.Node) error {
	if d, ok := types.AsDiagnostic(err); ok {
		d.AtLine(node.Line())
	}
	return err
}
