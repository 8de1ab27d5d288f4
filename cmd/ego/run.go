package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/ego/pkg/bytecode"
	"github.com/lemonberrylabs/ego/pkg/config"
	"github.com/lemonberrylabs/ego/pkg/pipeline"
)

// program is a loaded source file and the settings that apply to it.
type program struct {
	path   string
	source string
	cfg    *config.Config
}

// loadProgram resolves the program named by args. With no argument the
// entry of the project in the working directory is used; "-" reads stdin.
// Settings come from the project file next to the program, then the
// environment, then flags.
func loadProgram(cmd *cobra.Command, args []string) (*program, error) {
	dir := "."
	path := ""
	if len(args) > 0 && args[0] != "-" {
		path = args[0]
		dir = filepath.Dir(path)
	}

	cfg, _, err := config.Discover(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetInt("max-steps"); v != 0 {
		cfg.MaxSteps = v
	}
	if v, _ := cmd.Flags().GetInt("max-call-depth"); v != 0 {
		cfg.MaxCallDepth = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var src []byte
	switch {
	case len(args) > 0 && args[0] == "-":
		path = "<stdin>"
		src, err = io.ReadAll(cmd.InOrStdin())
	default:
		if path == "" {
			path = filepath.Join(dir, cfg.Entry)
		}
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &program{path: path, source: string(src), cfg: cfg}, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file | -]",
		Short: "Run an ego program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(cmd, args)
			if err != nil {
				return err
			}
			_, err = pipeline.Run(cmd.Context(), prog.source, pipeline.Options{
				Stdout:       cmd.OutOrStdout(),
				MaxSteps:     prog.cfg.MaxSteps,
				MaxCallDepth: prog.cfg.MaxCallDepth,
			})
			return err
		},
	}
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file | -]",
		Short: "Print the tokens of a program, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tok := range pipeline.Tokenize(prog.source) {
				fmt.Fprintf(out, "%d:%d\t%s\n", tok.Line, tok.Column, tok)
			}
			return nil
		},
	}
}

func newASTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file | -]",
		Short: "Print the syntax tree of a program as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(cmd, args)
			if err != nil {
				return err
			}
			tree, err := pipeline.Parse(prog.source)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if compact, _ := cmd.Flags().GetBool("compact"); compact {
				fmt.Fprintln(out, tree.String())
				return nil
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(tree); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().Bool("compact", false, "Print the one-line rendering instead of YAML")
	return cmd
}

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file | -]",
		Short: "Compile a print-only program to bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(cmd, args)
			if err != nil {
				return err
			}
			tree, err := pipeline.Parse(prog.source)
			if err != nil {
				return err
			}
			code, err := bytecode.Compile(tree)
			if err != nil {
				return err
			}

			if output, _ := cmd.Flags().GetString("output"); output != "" {
				if err := os.WriteFile(output, code, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
				return nil
			}
			text, err := bytecode.Disassemble(code)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write raw bytecode to this file instead of a listing")
	return cmd
}
