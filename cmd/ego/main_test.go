package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lemonberrylabs/ego/pkg/config"
	"github.com/lemonberrylabs/ego/pkg/types"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.ego")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunFile(t *testing.T) {
	path := writeProgram(t, `let a = "hi"; print(a, 2 * 3);`)
	out, err := execute(t, "", "run", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hi 6\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	out, err := execute(t, "print(1);\nprint(2);", "run", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1\n2\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunDiagnostic(t *testing.T) {
	path := writeProgram(t, "print(1);\nprint(missing);")
	out, err := execute(t, "", "run", path)
	d, ok := types.AsDiagnostic(err)
	if !ok || d.Kind != types.KindReference || d.Line != 2 {
		t.Fatalf("expected Reference diagnostic on line 2, got %v", err)
	}
	if out != "1\n" {
		t.Errorf("partial output = %q", out)
	}
}

func TestRunStepLimitFlag(t *testing.T) {
	path := writeProgram(t, "while (true) { }")
	_, err := execute(t, "", "run", "--max-steps", "50", path)
	if err == nil || !strings.Contains(err.Error(), "step limit exceeded (max 50)") {
		t.Errorf("expected step limit error, got %v", err)
	}
}

func TestTokens(t *testing.T) {
	out, err := execute(t, "let a = 1;", "tokens", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 tokens, got %q", out)
	}
	if lines[1] != "1:5\tIdentifier(a)" {
		t.Errorf("second token = %q", lines[1])
	}
}

func TestAST(t *testing.T) {
	out, err := execute(t, "print(1 + 2);", "ast", "--compact", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "Root(FunctionCall(print, (1 + 2)))" {
		t.Errorf("compact ast = %q", out)
	}

	out, err = execute(t, "print(1 + 2);", "ast", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"tag: Root", "tag: FunctionCall", "operator:"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml ast missing %q:\n%s", want, out)
		}
	}
}

func TestCompile(t *testing.T) {
	out, err := execute(t, "print(4, 5);", "compile", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "LOAD_CONST int64 4\nLOAD_CONST int64 5\nPRINT 2\n"
	if out != want {
		t.Errorf("listing = %q, want %q", out, want)
	}

	bin := filepath.Join(t.TempDir(), "out.bin")
	if _, err := execute(t, "print(4);", "compile", "-o", bin, "-"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code, err := os.ReadFile(bin)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(code) != 12 {
		t.Errorf("expected 12 bytes, got % x", code)
	}

	if _, err := execute(t, "let a = 1;", "compile", "-"); err == nil {
		t.Error("expected compile error for declarations")
	}
}

func TestNewProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello")
	if _, err := execute(t, "", "new", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, "ego.toml"))
	if err != nil {
		t.Fatalf("load ego.toml: %v", err)
	}
	if cfg.Entry != "main.ego" || cfg.Name != "hello" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	// the scaffolded entry runs through the project file
	out, err := execute(t, "", "run", filepath.Join(dir, "main.ego"))
	if err != nil {
		t.Fatalf("run scaffold: %v", err)
	}
	if out != "Hello from hello\n" {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "", "new", dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
}

func TestNewProjectYAML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	if _, err := execute(t, "", "new", "--format", "yaml", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "ego.yaml")); err != nil {
		t.Errorf("load ego.yaml: %v", err)
	}
	if _, err := execute(t, "", "new", "--format", "ini", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, types.NewSyntaxError("expected ';'").AtLine(3))
	got := buf.String()
	for _, want := range []string{"Syntax error:", "expected ';'", "(line 3)"} {
		if !strings.Contains(got, want) {
			t.Errorf("report %q missing %q", got, want)
		}
	}

	buf.Reset()
	reportError(&buf, errors.New("reading x: no such file"))
	if !strings.Contains(buf.String(), "error:") || !strings.Contains(buf.String(), "no such file") {
		t.Errorf("report = %q", buf.String())
	}
}
