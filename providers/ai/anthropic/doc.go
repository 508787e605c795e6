// Package anthropic implements the mago connector contract for Anthropic's
// Messages API.
//
// The main entry point is [New], which reads ANTHROPIC_API_KEY and
// ANTHROPIC_API_BASE_URL from the environment and fails fast when no
// credential is available.
//
// Adaptation reshapes the neutral history to the API's constraints: a leading
// system message is lifted into the top-level system field, consecutive
// tool-result messages are merged into a single user turn, and image content
// becomes base64 source blocks. Normalization reverses the mapping, so a
// history can round-trip through this connector without losing order or role
// information.
package anthropic
