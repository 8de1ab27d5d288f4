package bytecode

import (
	"fmt"

	"github.com/lemonberrylabs/ego/pkg/ast"
)

// Machine is an external virtual machine that runs compiled code.
type Machine interface {
	Run(code []byte) error
}

// Execute compiles tree and hands the bytes to m.
func Execute(m Machine, tree *ast.Node) error {
	code, err := Compile(tree)
	if err != nil {
		return err
	}
	if err := m.Run(code); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	return nil
}
