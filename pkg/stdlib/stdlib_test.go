package stdlib

import (
	"bytes"
	"math"
	"testing"

	"github.com/lemonberrylabs/ego/pkg/types"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		args []types.Value
		want string
	}{
		{"raw string", []types.Value{types.NewRawString(`"hi"`)}, "hi\n"},
		{"several", []types.Value{types.NewNumber(1), types.NewBool(true), types.NewString("x")}, "1 true x\n"},
		{"nothing", []types.Value{types.Nothing}, "nothing\n"},
		{"no args", nil, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRegistry(&buf)
			result, err := r.CallFunction("print", tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsNothing() {
				t.Errorf("print returned %v, want nothing", result)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLen(t *testing.T) {
	r := NewRegistry(nil)

	got, err := r.CallFunction("len", []types.Value{types.NewRawString(`"héllo"`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(types.NewNumber(5)) {
		t.Errorf("len = %v, want 5", got)
	}

	_, err = r.CallFunction("len", []types.Value{types.NewNumber(3)})
	if d, ok := types.AsDiagnostic(err); !ok || d.Kind != types.KindType {
		t.Errorf("expected Type error, got %v", err)
	}

	_, err = r.CallFunction("len", nil)
	if d, ok := types.AsDiagnostic(err); !ok || d.Kind != types.KindType {
		t.Errorf("expected Type error for arity, got %v", err)
	}
}

func TestType(t *testing.T) {
	r := NewRegistry(nil)
	tests := []struct {
		arg  types.Value
		want string
	}{
		{types.NewNumber(1), "number"},
		{types.NewString("s"), "string"},
		{types.NewBool(false), "bool"},
		{types.Nothing, "nothing"},
		{types.NewFunction(&types.Function{Name: "f"}), "function"},
	}
	for _, tt := range tests {
		got, err := r.CallFunction("type", []types.Value{tt.arg})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AsString() != tt.want {
			t.Errorf("type(%v) = %q, want %q", tt.arg, got.AsString(), tt.want)
		}
	}
}

func TestUnknownFunction(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.CallFunction("nope", nil)
	d, ok := types.AsDiagnostic(err)
	if !ok || d.Kind != types.KindReference {
		t.Fatalf("expected Reference error, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := NewRegistry(nil).Names()
	want := []string{"abs", "len", "lower", "max", "min", "print", "substring", "type", "upper"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []types.Value
		want types.Value
	}{
		{"abs negative", "abs", []types.Value{types.NewNumber(-4)}, types.NewNumber(4)},
		{"abs positive", "abs", []types.Value{types.NewNumber(4)}, types.NewNumber(4)},
		{"min", "min", []types.Value{types.NewNumber(3), types.NewNumber(-1)}, types.NewNumber(-1)},
		{"max", "max", []types.Value{types.NewNumber(3), types.NewNumber(-1)}, types.NewNumber(3)},
		{"upper raw", "upper", []types.Value{types.NewRawString(`"abc"`)}, types.NewString("ABC")},
		{"lower", "lower", []types.Value{types.NewString("AbC")}, types.NewString("abc")},
		{"substring", "substring", []types.Value{types.NewString("héllo"), types.NewNumber(1), types.NewNumber(3)}, types.NewString("él")},
		{"substring to end", "substring", []types.Value{types.NewString("hello"), types.NewNumber(3)}, types.NewString("lo")},
		{"substring clamped", "substring", []types.Value{types.NewString("hi"), types.NewNumber(-5), types.NewNumber(50)}, types.NewString("hi")},
		{"substring empty", "substring", []types.Value{types.NewString("hi"), types.NewNumber(2), types.NewNumber(1)}, types.NewString("")},
	}

	r := NewRegistry(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.CallFunction(tt.fn, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("%s = %v, want %v", tt.fn, got, tt.want)
			}
		})
	}
}

func TestHelperTypeErrors(t *testing.T) {
	tests := []struct {
		fn   string
		args []types.Value
	}{
		{"abs", []types.Value{types.NewString("x")}},
		{"abs", nil},
		{"min", []types.Value{types.NewNumber(1)}},
		{"max", []types.Value{types.NewNumber(1), types.NewBool(true)}},
		{"upper", []types.Value{types.NewNumber(1)}},
		{"lower", nil},
		{"substring", []types.Value{types.NewString("x")}},
		{"substring", []types.Value{types.NewString("x"), types.NewString("0")}},
	}

	r := NewRegistry(nil)
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			_, err := r.CallFunction(tt.fn, tt.args)
			d, ok := types.AsDiagnostic(err)
			if !ok || d.Kind != types.KindType {
				t.Errorf("expected Type error, got %v", err)
			}
		})
	}
}

func TestAbsOverflow(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.CallFunction("abs", []types.Value{types.NewNumber(math.MinInt64)})
	d, ok := types.AsDiagnostic(err)
	if !ok || d.Kind != types.KindExpression {
		t.Errorf("expected Expression error, got %v", err)
	}
}
