// Package pipeline runs ego source text through every phase: tokenize,
// parse and evaluate. It is the entry point used by the CLI and the HTTP
// host.
package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/lexer"
	"github.com/lemonberrylabs/ego/pkg/parser"
	"github.com/lemonberrylabs/ego/pkg/runtime"
	"github.com/lemonberrylabs/ego/pkg/stdlib"
	"github.com/lemonberrylabs/ego/pkg/token"
)

// Options configures a run.
type Options struct {
	// Stdout, when set, receives print output as it is produced in addition
	// to the captured Result.Output.
	Stdout       io.Writer
	MaxSteps     int
	MaxCallDepth int
}

// Result is what a run produced. On error it holds whatever the phases
// reached: tokens always, the tree if parsing succeeded, and the output
// printed before the failure.
type Result struct {
	Tokens []token.Token
	Tree   *ast.Node
	Output []string
	Steps  int
}

// Tokenize returns the tokens of source.
func Tokenize(source string) []token.Token {
	return lexer.Tokenize(source)
}

// Parse tokenizes and parses source.
func Parse(source string) (*ast.Node, error) {
	return parser.Parse(lexer.Tokenize(source))
}

// Run executes source and returns its output. The returned error is a
// *types.Diagnostic for program errors, or the context error on
// cancellation.
func Run(ctx context.Context, source string, opts Options) (*Result, error) {
	result := &Result{Tokens: lexer.Tokenize(source)}

	tree, err := parser.Parse(result.Tokens)
	if err != nil {
		return result, err
	}
	result.Tree = tree

	var buf bytes.Buffer
	var out io.Writer = &buf
	if opts.Stdout != nil {
		out = io.MultiWriter(&buf, opts.Stdout)
	}

	engine := runtime.NewEngine(tree, stdlib.NewRegistry(out), runtime.Options{
		MaxSteps:     opts.MaxSteps,
		MaxCallDepth: opts.MaxCallDepth,
	})
	err = engine.Exec(ctx)
	result.Output = lines(buf.String())
	result.Steps = engine.Steps()
	return result, err
}

// lines splits newline-terminated output into lines.
func lines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
