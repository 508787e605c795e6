// Package webfetch provides a bundled tool that fetches web pages over
// HTTP/HTTPS and converts their HTML content into Markdown for consumption by
// language models.
//
// The main entry point is [New], which returns a ready-to-use [tool.Tool].
// The underlying fetch logic is also available directly through [Fetch].
//
// URL normalisation, redirect following, response-size limiting, and
// context-aware cancellation are handled automatically.
package webfetch
