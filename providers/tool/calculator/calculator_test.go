package calculator

import (
	"context"
	"testing"
)

func TestCalc_Operations(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		a, b     float64
		expected float64
	}{
		{"add keyword", "add", 3, 4, 7},
		{"plus symbol", "+", 3, 4, 7},
		{"negative operands", "add", -1, -2, -3},
		{"sub keyword", "sub", 10, 3, 7},
		{"minus symbol", "-", 10, 3, 7},
		{"mul keyword", "mul", 3, 4, 12},
		{"star symbol", "*", -3, 4, -12},
		{"div keyword", "div", 10, 4, 2.5},
		{"slash symbol", "/", 9, 3, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := Calc(context.Background(), Input{A: tc.a, B: tc.b, Op: tc.op})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.Result != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, output.Result)
			}
		})
	}
}

func TestCalc_DivisionByZero(t *testing.T) {
	_, err := Calc(context.Background(), Input{A: 1, B: 0, Op: "div"})
	if err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestCalc_UnknownOperation(t *testing.T) {
	_, err := Calc(context.Background(), Input{A: 1, B: 2, Op: "pow"})
	if err == nil {
		t.Fatal("expected error for unsupported operation")
	}
}

func TestNew_ToolInfo(t *testing.T) {
	calc := New()
	info := calc.ToolInfo()

	if info.Name != "Calculator" {
		t.Errorf("unexpected tool name %q", info.Name)
	}
	if info.Parameters == nil {
		t.Fatal("expected derived parameter schema")
	}
	op, ok := info.Parameters.Properties["Op"]
	if !ok {
		t.Fatal("expected Op property in schema")
	}
	if len(op.Enum) != 4 {
		t.Errorf("expected 4 enum values for Op, got %v", op.Enum)
	}
}

func TestCalculatorViaGenericCall(t *testing.T) {
	calc := New()

	out, err := calc.Call(context.Background(), `{"A": 2, "B": 2, "Op": "add"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"result":4}` {
		t.Errorf("unexpected output %q", out)
	}
}
