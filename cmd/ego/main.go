// Package main is the entry point for the ego command.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/ego/pkg/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ego",
		Short:         "Run, inspect and host ego programs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("ego version {{.Version}}\n")

	root.PersistentFlags().Int("max-steps", 0, "Statement budget per run (default 100000, env EGO_MAX_STEPS)")
	root.PersistentFlags().Int("max-call-depth", 0, "Nested call limit (default 64, env EGO_MAX_CALL_DEPTH)")

	root.AddCommand(
		newRunCmd(),
		newTokensCmd(),
		newASTCmd(),
		newCompileCmd(),
		newNewCmd(),
		newServeCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		reportError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	lineStyle    = lipgloss.NewStyle().Faint(true)
	messageStyle = lipgloss.NewStyle()
)

// reportError writes err to w. Diagnostics get a styled
// "<Kind> error: <message> (line N)" rendering.
func reportError(w io.Writer, err error) {
	d, ok := types.AsDiagnostic(err)
	if !ok {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("error:"), messageStyle.Render(err.Error()))
		return
	}
	out := labelStyle.Render(d.Kind.String()+" error:") + " " + messageStyle.Render(d.Message)
	if d.Line > 0 {
		out += " " + lineStyle.Render(fmt.Sprintf("(line %d)", d.Line))
	}
	fmt.Fprintln(w, out)
}
