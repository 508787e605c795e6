// Package openai implements the mago connector contract for OpenAI-compatible
// APIs over the universal /v1/chat/completions endpoint.
//
// The main entry point is [New], which reads OPENAI_API_KEY and
// OPENAI_API_BASE_URL from the environment and fails fast when no credential
// is available. Use [WithAPIKey], [WithBaseURL], and [WithModel] to override
// these values programmatically.
//
// Adaptation preserves the neutral history order unchanged: the API accepts an
// inline system role, so no message lifting or merging is required. Image
// content is sent as base64 data-URL content parts.
package openai
