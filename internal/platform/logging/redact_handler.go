package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders lists lowercase header names whose values never reach a
// log line. The HTTP middleware's header dump and the handler-level masking
// below both read it.
var SensitiveHeaders = map[string]bool{
	"authorization":  true,
	"x-api-key":      true,
	"x-goog-api-key": true,
	"cookie":         true,
}

// sensitiveFields are attribute keys masked wherever they appear, including
// inside groups and logged structs.
var sensitiveFields = []string{"password", "secret", "token", "api_key"}

// sensitivePrefixes catch variants such as secret_key or api_key_v2.
var sensitivePrefixes = []string{"secret_", "api_key"}

// sensitiveValues mask credentials that end up inside free-form strings: a
// provider error body echoing the request, or a URL carrying ?key=.
var sensitiveValues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	// JWTs; ten characters per segment keeps version strings out.
	regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
	regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
	regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
	regexp.MustCompile(`[?&]key=[^&\s]+`),
}

// newRedactAttr builds the masq ReplaceAttr used by every handler New creates.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0,
		len(SensitiveHeaders)+len(sensitiveFields)+len(sensitivePrefixes)+len(sensitiveValues))

	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, prefix := range sensitivePrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}
	for _, re := range sensitiveValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return masq.New(opts...)
}
