// Package filestore implements conversation.Store on the local filesystem.
// Each conversation is one JSON file; saves are whole-file overwrites.
package filestore
