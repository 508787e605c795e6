package utils

import (
	"io"
	"log/slog"
)

// CloseWithLog closes c and logs any close error at debug level. Intended for
// defer statements where the close error cannot change the outcome.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Debug("close failed", "error", err)
	}
}
