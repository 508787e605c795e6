// Package calculator provides a bundled arithmetic tool for language models.
package calculator

import (
	"context"
	"fmt"

	"github.com/modal-agent/mago/providers/tool"
)

// New returns a [tool.Tool] configured for basic arithmetic. It registers
// [Calc] as its execution function. The computation runs in-process with no
// external API calls.
func New() *tool.Tool[Input, Output] {
	return tool.MustNew(
		"Calculator",
		Calc,
		tool.WithDescription("A simple calculator to perform basic arithmetic operations like addition, subtraction, multiplication, and division."),
	)
}

// Calc performs the arithmetic operation specified by req.Op on the operands
// req.A and req.B. Supported operations are "add"/"+", "sub"/"-", "mul"/"*",
// and "div"/"/". Division by zero and unrecognised operations return an error
// so the model can correct its call.
func Calc(ctx context.Context, req Input) (Output, error) {
	switch req.Op {
	case "add", "+":
		return Output{Result: req.A + req.B}, nil
	case "sub", "-":
		return Output{Result: req.A - req.B}, nil
	case "mul", "*":
		return Output{Result: req.A * req.B}, nil
	case "div", "/":
		if req.B == 0 {
			return Output{}, fmt.Errorf("division by zero")
		}
		return Output{Result: req.A / req.B}, nil
	default:
		return Output{}, fmt.Errorf("unsupported operation %q", req.Op)
	}
}

// Input holds the two operands and the operation to be applied by [Calc].
type Input struct {
	A  float64 `json:"A"  jsonschema:"description=First operand,required"`
	B  float64 `json:"B"  jsonschema:"description=Second operand,required"`
	Op string  `json:"Op" jsonschema:"description=Operation type,enum=add,enum=sub,enum=mul,enum=div,required"`
}

// Output carries the single floating-point result produced by [Calc].
type Output struct {
	Result float64 `json:"result" jsonschema:"description=The result of the calculation"`
}
