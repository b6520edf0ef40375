package middleware

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
)

const redacted = "[REDACTED]"

// RedactHeaders turns headers into log attributes sorted by name. Values of
// logging.SensitiveHeaders are replaced with [REDACTED]; repeated headers are
// joined with commas.
func RedactHeaders(headers http.Header) []slog.Attr {
	keys := slices.Sorted(maps.Keys(headers))

	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		value := redacted
		if !logging.SensitiveHeaders[strings.ToLower(key)] {
			value = strings.Join(headers[key], ",")
		}
		attrs = append(attrs, slog.String(key, value))
	}
	return attrs
}
