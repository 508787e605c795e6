// Package parse provides utilities for extracting and converting structured
// data from raw LLM text output. Language models frequently wrap JSON in
// markdown code fences or emit slightly malformed JSON, so this package
// applies a layered recovery strategy: fence stripping, direct unmarshaling,
// and automatic JSON repair before falling back to a clear error.
//
// The main entry point is the generic [ParseStringAs] function, which handles
// both primitive types (string, bool, int, float) and complex types (structs,
// maps, slices) in a single, uniform API.
package parse
