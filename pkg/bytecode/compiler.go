// Package bytecode lowers a restricted subset of ego to a flat byte stream
// for an external virtual machine. Only print statements whose arguments
// are integer literals can be compiled.
//
// Encoding, per print statement:
//
//	for each argument: OpLoadConst TagInt64 <int64, 8 bytes little-endian>
//	then:              OpPrint <argc, 1 byte>
package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/lemonberrylabs/ego/pkg/ast"
	"github.com/lemonberrylabs/ego/pkg/types"
)

// Opcodes.
const (
	OpLoadConst byte = 0x01
	OpPrint     byte = 0x02
)

// Constant tags.
const (
	TagInt64 byte = 0x01
)

// MaxPrintArgs is the most arguments one print can carry; argc is one byte.
const MaxPrintArgs = 255

// Emitter accumulates instructions.
type Emitter struct {
	code []byte
}

// Compile lowers tree to bytecode.
func Compile(tree *ast.Node) ([]byte, error) {
	if tree == nil || tree.Tag != ast.Root {
		return nil, types.NewSyntaxError("bytecode: expected a program root")
	}
	e := &Emitter{}
	for _, stmt := range tree.Children {
		if err := e.emitStatement(stmt); err != nil {
			return nil, err
		}
	}
	return e.code, nil
}

func (e *Emitter) emitStatement(stmt *ast.Node) error {
	if stmt.Tag != ast.FunctionCall {
		return unsupported(stmt, fmt.Sprintf("%s statements are not supported", stmt.Tag))
	}
	name := stmt.Children[0].Value.AsIdentifier()
	if name != "print" {
		return unsupported(stmt, fmt.Sprintf("call to '%s' is not supported", name))
	}

	args := stmt.Children[1:]
	if len(args) > MaxPrintArgs {
		return unsupported(stmt, fmt.Sprintf("print takes at most %d arguments", MaxPrintArgs))
	}
	for _, arg := range args {
		if !arg.Is(ast.NumberLiteral) {
			return unsupported(arg, "only integer literal arguments are supported")
		}
		e.emitLoadConst(arg.Value.AsNumber())
	}
	e.code = append(e.code, OpPrint, byte(len(args)))
	return nil
}

func (e *Emitter) emitLoadConst(v int64) {
	e.code = append(e.code, OpLoadConst, TagInt64)
	e.code = binary.LittleEndian.AppendUint64(e.code, uint64(v))
}

func unsupported(node *ast.Node, msg string) error {
	return types.NewSyntaxError("bytecode: " + msg).AtLine(node.Line())
}

// Disassemble renders code as one instruction per line, e.g.
// "LOAD_CONST int64 42" and "PRINT 1".
func Disassemble(code []byte) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(code); {
		switch code[i] {
		case OpLoadConst:
			if i+10 > len(code) {
				return "", fmt.Errorf("truncated LOAD_CONST at offset %d", i)
			}
			if code[i+1] != TagInt64 {
				return "", fmt.Errorf("unknown constant tag 0x%02x at offset %d", code[i+1], i+1)
			}
			v := int64(binary.LittleEndian.Uint64(code[i+2 : i+10]))
			fmt.Fprintf(&sb, "LOAD_CONST int64 %d\n", v)
			i += 10
		case OpPrint:
			if i+2 > len(code) {
				return "", fmt.Errorf("truncated PRINT at offset %d", i)
			}
			fmt.Fprintf(&sb, "PRINT %d\n", code[i+1])
			i += 2
		default:
			return "", fmt.Errorf("unknown opcode 0x%02x at offset %d", code[i], i)
		}
	}
	return sb.String(), nil
}
