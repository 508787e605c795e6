package tool

import (
	"errors"
	"fmt"

	"github.com/modal-agent/mago/internal/jsonschema"
)

// SchemaGenerationError is returned by New when a tool's input or output type
// cannot be expressed as a JSON schema. It names the tool and wraps the
// underlying jsonschema error, which identifies the offending field.
type SchemaGenerationError struct {
	ToolName string
	Err      error
}

func (e *SchemaGenerationError) Error() string {
	return fmt.Sprintf("tool %q: schema generation failed: %v", e.ToolName, e.Err)
}

func (e *SchemaGenerationError) Unwrap() error {
	return e.Err
}

// IsUnsupportedType reports whether the schema failure was caused by a Go type
// that has no JSON representation (func, chan, complex, unsafe pointer).
func (e *SchemaGenerationError) IsUnsupportedType() bool {
	var unsupported *jsonschema.UnsupportedTypeError
	return errors.As(e.Err, &unsupported)
}
