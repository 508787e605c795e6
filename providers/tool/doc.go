// Package tool provides the foundational types and utilities for defining and
// executing tools that can be invoked by AI language models.
//
// A tool wraps a typed Go function together with its name, description, and
// auto-derived JSON schemas, making it ready to advertise through any
// [ai.Connector]. The main entry point for creating tools is [New]; schema
// derivation happens at registration so that unsupported parameter types fail
// before the first model call. The [WithDescription] option configures the
// text surfaced to the model.
//
// The [Catalog] type offers a thread-safe registry for managing collections of
// tools; use [NewCatalog] to create one.
package tool
