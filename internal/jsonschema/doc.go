// Package jsonschema generates JSON Schema documents from Go types via
// reflection. It is used at tool registration time to derive the parameter
// schema advertised to AI providers, so an unsupported parameter type is
// reported when the tool is built, never when a model attempts to call it.
package jsonschema
