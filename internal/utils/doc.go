// Package utils provides shared low-level helpers used throughout the mago
// internals: the synchronous JSON POST helper connectors build their Send
// step on, plus generic pointer and string utilities.
//
// Key entry points: [PostJSON] for synchronous JSON round-trips, [DecodeJSON]
// for decoding provider response bodies, and [Ptr] for converting values to
// pointers.
package utils
