package agent

import (
	"encoding/json"

	"github.com/google/uuid"
)

// mediaContext holds inline media payloads keyed by generated identifiers.
// Tool outputs that carry an image have the payload swapped for a key before
// the output reaches the model, so large base64 blobs never round-trip
// through the provider. A later tool call can name the key in an argument and
// the payload is substituted back before the handler runs.
type mediaContext struct {
	store map[string]string
}

func newMediaContext() *mediaContext {
	return &mediaContext{store: map[string]string{}}
}

// substituteArgs replaces top-level string argument values that match a
// stored media key with the stored payload. Arguments that are not a JSON
// object, or that reference no known key, pass through unchanged.
func (m *mediaContext) substituteArgs(args json.RawMessage) json.RawMessage {
	if len(args) == 0 || len(m.store) == 0 {
		return args
	}

	var fields map[string]any
	if err := json.Unmarshal(args, &fields); err != nil {
		return args
	}

	touched := false
	for key, value := range fields {
		str, ok := value.(string)
		if !ok {
			continue
		}
		if payload, found := m.store[str]; found {
			fields[key] = payload
			touched = true
		}
	}
	if !touched {
		return args
	}

	rewritten, err := json.Marshal(fields)
	if err != nil {
		return args
	}
	return rewritten
}

// stashOutput scans a tool output document for an inline image payload and
// swaps the data for a generated key. Returns the rewritten document and the
// key, or the original document and "" when no payload was found.
func (m *mediaContext) stashOutput(output string) (string, string) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(output), &fields); err != nil {
		return output, ""
	}

	image, ok := fields["image"].(map[string]any)
	if !ok {
		return output, ""
	}
	data, ok := image["data"].(string)
	if !ok || data == "" {
		return output, ""
	}

	key := uuid.NewString()
	m.store[key] = data
	image["data"] = key

	rewritten, err := json.Marshal(fields)
	if err != nil {
		return output, ""
	}
	return string(rewritten), key
}

// get returns the payload stored under key, if any.
func (m *mediaContext) get(key string) (string, bool) {
	payload, ok := m.store[key]
	return payload, ok
}
