package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/modal-agent/mago/providers/observability"
)

// PostJSON performs a synchronous HTTP POST with a JSON body and returns the
// status code, status line, and raw response body. It does not interpret the
// status code; connectors classify non-2xx responses into their error
// taxonomy so that 4xx bodies remain available for diagnostics.
//
// Error handling strategy:
//   - Context errors (timeout, cancellation) are propagated immediately
//   - Transport errors (DNS, dial, TLS) return the error with a nil body
//   - Response body close errors are logged but don't override primary errors
//
// The response body is always closed via defer, logging any close error
// without overriding the primary error returned by the function.
func PostJSON(ctx context.Context, client *http.Client, url string, headers []Header, body any) (int, string, []byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, "", nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, "POST"),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, "", nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return 0, "", nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			// Log the close error, but don't override the main error.
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, res.Status, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	return res.StatusCode, res.Status, respBody, nil
}

// Header is a single HTTP header key/value pair used by PostJSON.
type Header struct {
	Key   string
	Value string
}

// DecodeJSON unmarshals a response body into OutputStruct, including a
// truncated body preview in the error for debugging malformed payloads.
func DecodeJSON[OutputStruct any](body []byte) (*OutputStruct, error) {
	var out OutputStruct
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("error unmarshaling response body: %w\nResponse preview: %s", err, TruncateString(string(body), 500))
	}
	return &out, nil
}
