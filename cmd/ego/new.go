package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/ego/pkg/config"
)

const greeting = `// Entry point of %s.
let greeting = "Hello from %s";
print(greeting);
`

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new ego project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return scaffold(args[0], format)
		},
	}
	cmd.Flags().String("format", "toml", "Project file format: toml or yaml")
	return cmd
}

// scaffold creates dir with a project file and an entry program.
func scaffold(dir, format string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%s already exists", dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	name := filepath.Base(dir)
	cfg := config.Default()
	cfg.Name = name

	var projectFile string
	var encode func(*os.File) error
	switch format {
	case "toml":
		projectFile = "ego.toml"
		encode = func(f *os.File) error { return cfg.EncodeTOML(f) }
	case "yaml":
		projectFile = "ego.yaml"
		encode = func(f *os.File) error { return cfg.EncodeYAML(f) }
	default:
		return fmt.Errorf("unsupported format %q (want toml or yaml)", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, projectFile))
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", projectFile, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	entry := filepath.Join(dir, cfg.Entry)
	if err := os.WriteFile(entry, []byte(fmt.Sprintf(greeting, name, name)), 0o644); err != nil {
		return err
	}
	return nil
}
