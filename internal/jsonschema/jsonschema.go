package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema represents the structure of JSON Schema used for defining tool
// arguments and responses. It follows the JSON Schema standard, supporting
// the types, properties, and validation rules needed for tool calling.
type Schema struct {
	// Type specifies the data type (e.g. "object", "array", "string", "number")
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of the arguments, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties controls whether properties not defined in Properties are allowed
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Enum contains the list of allowed values for the parameter
	Enum []any `json:"enum,omitempty"`
	// Ref is used for JSON Schema references to avoid infinite recursion
	Ref string `json:"$ref,omitempty"`
	// Defs contains reusable schema definitions
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// UnsupportedTypeError reports a parameter type that cannot be expressed as a
// JSON schema. Field names the offending parameter so the problem surfaces at
// registration time rather than when a model attempts the call.
type UnsupportedTypeError struct {
	Field string
	Kind  reflect.Kind
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("jsonschema: unsupported type %s for parameter %q", e.Kind, e.Field)
}

// GenerateJSONSchema generates a JSON schema for the type T. Struct fields are
// mapped via their json tags; jsonschema tags customize descriptions, enums,
// and required-ness. Returns an [UnsupportedTypeError] when T (or a nested
// field) has a kind that cannot be represented, naming the offending field.
func GenerateJSONSchema[T any]() (*Schema, error) {
	t := reflect.TypeFor[T]()

	// Context tracks visited struct types so self-referential types become
	// $defs references instead of infinite recursion.
	ctx := &schemaContext{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Schema),
	}

	schema, err := generateSchema(t, ctx, "")
	if err != nil {
		return nil, err
	}

	if len(ctx.defs) > 0 {
		schema.Defs = ctx.defs
	}

	return schema, nil
}

// schemaContext tracks state during schema generation to handle recursion.
type schemaContext struct {
	visited map[reflect.Type]string // Maps struct types to their definition names
	defs    map[string]*Schema      // Reusable schema definitions
}

func generateSchema(t reflect.Type, ctx *schemaContext, fieldPath string) (*Schema, error) {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil

	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil

	case reflect.Slice, reflect.Array:
		items, err := generateSchema(t.Elem(), ctx, fieldPath)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil

	case reflect.Map:
		valueSchema, err := generateSchema(t.Elem(), ctx, fieldPath)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: valueSchema}, nil

	case reflect.Ptr:
		return generateSchema(t.Elem(), ctx, fieldPath)

	case reflect.Interface:
		// An untyped value: accept any JSON object.
		return &Schema{Type: "object"}, nil

	case reflect.Struct:
		return generateStructSchema(t, ctx, fieldPath)

	default:
		// func, chan, complex, unsafe pointer — not expressible in JSON.
		return nil, &UnsupportedTypeError{Field: fieldPath, Kind: t.Kind()}
	}
}

// generateStructSchema builds an object schema for a struct type. Already
// visited types return a $defs reference so recursive types terminate.
func generateStructSchema(t reflect.Type, ctx *schemaContext, fieldPath string) (*Schema, error) {
	if defName, exists := ctx.visited[t]; exists {
		return &Schema{Ref: "#/$defs/" + defName}, nil
	}

	defName := defNameFor(t)
	if t.Name() != "" {
		ctx.visited[t] = defName
	}

	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		isOmitEmpty := false
		if jsonTag != "" {
			if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
				if jsonTag[:commaIdx] != "" {
					fieldName = jsonTag[:commaIdx]
				}
				isOmitEmpty = strings.Contains(jsonTag[commaIdx:], "omitempty")
			} else {
				fieldName = jsonTag
			}
		}

		childPath := fieldName
		if fieldPath != "" {
			childPath = fieldPath + "." + fieldName
		}

		fieldSchema, err := generateSchema(field.Type, ctx, childPath)
		if err != nil {
			return nil, err
		}
		schema.Properties[fieldName] = fieldSchema

		isRequiredByTag := false
		if fieldSchema.Ref == "" {
			isRequiredByTag, err = parseJSONSchemaTag(field.Type, field.Tag, fieldSchema)
			if err != nil {
				return nil, fmt.Errorf("jsonschema: parameter %q: %w", childPath, err)
			}
		}

		// A field is required when it has no default representation: not a
		// pointer and not omitempty, or explicitly marked required by tag.
		if (field.Type.Kind() != reflect.Ptr && !isOmitEmpty) || isRequiredByTag {
			required = append(required, fieldName)
		}
	}

	if len(required) > 0 {
		schema.Required = required
	}

	// Register the definition so later references resolve; the root caller
	// still receives the inline schema.
	if t.Name() != "" {
		ctx.defs[defName] = schema
	}

	return schema, nil
}

// defNameFor creates a definition name for a type.
func defNameFor(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// parseJSONSchemaTag parses the jsonschema struct tag and applies the settings
// to the schema. Supported struct tags:
//  1. jsonschema:"description=xxx"
//  2. jsonschema:"enum=xxx,enum=yyy" (values converted to the field type)
//  3. jsonschema:"required"
func parseJSONSchemaTag(fieldType reflect.Type, tag reflect.StructTag, schema *Schema) (bool, error) {
	jsonSchemaTag := tag.Get("jsonschema")
	if len(jsonSchemaTag) == 0 {
		return false, nil
	}

	isRequiredByTag := false
	for _, tagItem := range strings.Split(jsonSchemaTag, ",") {
		kv := strings.SplitN(tagItem, "=", 2)
		switch {
		case len(kv) == 2 && kv[0] == "description":
			schema.Description = kv[1]

		case len(kv) == 2 && kv[0] == "enum":
			value, err := convertEnumValue(fieldType, kv[1])
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, value)

		case len(kv) == 1 && kv[0] == "required":
			isRequiredByTag = true
		}
	}

	return isRequiredByTag, nil
}

// convertEnumValue converts an enum tag value string into the field's type.
func convertEnumValue(fieldType reflect.Type, value string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v as int64: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v as float64: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v as bool: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum tag unsupported for field type %v", fieldType)
	}
}

// JsonString converts the Schema to its JSON representation.
// If indent is true, the JSON is formatted with indentation.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	shouldIndent := false
	if len(indent) > 0 {
		shouldIndent = indent[0]
	}

	var jsonBytes []byte
	var err error
	if shouldIndent {
		jsonBytes, err = json.MarshalIndent(s, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// String returns the compact JSON representation of the schema, or an error
// message if marshalling fails.
func (s *Schema) String() string {
	jsonStr, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return jsonStr
}
