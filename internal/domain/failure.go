package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrorKind classifies a pipeline failure. Kinds are grouped into families
// (validation, data, transport, application) plus a catch-all.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindParsing    ErrorKind = "PARSING_ERROR"
	KindFormat     ErrorKind = "FORMAT_ERROR"

	KindMissingData      ErrorKind = "MISSING_DATA"
	KindInconsistentData ErrorKind = "INCONSISTENT_DATA"
	KindEmptyResponse    ErrorKind = "EMPTY_RESPONSE"

	KindAPI             ErrorKind = "API_ERROR"
	KindRateLimit       ErrorKind = "RATE_LIMIT"
	KindTimeout         ErrorKind = "TIMEOUT"
	KindConnection      ErrorKind = "CONNECTION"
	KindContentFiltered ErrorKind = "CONTENT_FILTERED"

	KindBusinessLogic        ErrorKind = "BUSINESS_LOGIC"
	KindUnauthorized         ErrorKind = "UNAUTHORIZED"
	KindUnsupportedOperation ErrorKind = "UNSUPPORTED_OPERATION"

	KindUnknown ErrorKind = "UNKNOWN"
)

// Error families returned by ErrorKind.Family.
const (
	FamilyValidation  = "validation"
	FamilyData        = "data"
	FamilyTransport   = "transport"
	FamilyApplication = "application"
	FamilyUnknown     = "unknown"
)

// Family returns the family the kind belongs to. Unrecognized kinds report
// FamilyUnknown.
func (k ErrorKind) Family() string {
	switch k {
	case KindValidation, KindParsing, KindFormat:
		return FamilyValidation
	case KindMissingData, KindInconsistentData, KindEmptyResponse:
		return FamilyData
	case KindAPI, KindRateLimit, KindTimeout, KindConnection, KindContentFiltered:
		return FamilyTransport
	case KindBusinessLogic, KindUnauthorized, KindUnsupportedOperation:
		return FamilyApplication
	default:
		return FamilyUnknown
	}
}

// IsValid returns true if the kind is one of the defined constants.
func (k ErrorKind) IsValid() bool {
	return k == KindUnknown || k.Family() != FamilyUnknown
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	return string(k)
}

// ParseErrorKind converts a configuration string into an ErrorKind. Matching
// is case-insensitive and accepts hyphens in place of underscores.
func ParseErrorKind(s string) (ErrorKind, error) {
	k := ErrorKind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown error kind %q", s)
	}
	return k, nil
}

// Error is the classified failure carried through the pipeline. It is built at
// the point of failure and never mutated afterwards; the With* helpers return
// copies.
type Error struct {
	Kind        ErrorKind
	Message     string
	Cause       error
	Details     map[string]any
	Recoverable bool
}

// NewError creates a non-recoverable Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Kind))
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is maps error families onto the package sentinels so callers outside the
// pipeline can keep using errors.Is(err, ErrValidation) and friends.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind.Family() == FamilyValidation
	case ErrUnavailable:
		return e.Kind.Family() == FamilyTransport
	case ErrForbidden:
		return e.Kind == KindUnauthorized
	default:
		return false
	}
}

// WithCause returns a copy of e with cause attached.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// WithDetails returns a copy of e whose details include the given key/value.
func (e *Error) WithDetails(key string, value any) *Error {
	c := *e
	c.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		c.Details[k] = v
	}
	c.Details[key] = value
	return &c
}

// AsRecoverable returns a copy of e flagged as recoverable.
func (e *Error) AsRecoverable() *Error {
	c := *e
	c.Recoverable = true
	return &c
}

// UserFacing reports whether the message is safe to show an end user after
// formatting.
func (e *Error) UserFacing() bool {
	switch e.Kind {
	case KindValidation, KindMissingData, KindBusinessLogic, KindUnauthorized:
		return true
	default:
		return false
	}
}

// Critical reports whether the failure warrants elevated-severity logging.
func (e *Error) Critical() bool {
	switch e.Kind {
	case KindAPI, KindConnection, KindUnknown:
		return true
	default:
		return false
	}
}

// GenericUserMessage is shown for every kind that is not user-facing.
const GenericUserMessage = "Something went wrong. Please try again later."

// UserMessage renders the templated end-user sentence for e. Internal
// diagnostics never appear in the result for non user-facing kinds.
func (e *Error) UserMessage() string {
	if !e.UserFacing() {
		return GenericUserMessage
	}
	switch e.Kind {
	case KindValidation:
		return "The provided data is not valid: " + e.Message
	case KindMissingData:
		return "Some information is missing: " + e.Message
	case KindUnauthorized:
		return "You are not allowed to perform this action."
	default:
		return e.Message
	}
}

// Classify converts an arbitrary error into an *Error. An error that already
// is (or wraps) an *Error is returned unchanged. Otherwise the result carries
// kind, details and recoverable as given, err as its cause, and err's message
// (or defaultMessage when err has none).
func Classify(err error, defaultMessage string, kind ErrorKind, details map[string]any, recoverable bool) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}

	msg := defaultMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	return &Error{
		Kind:        kind,
		Message:     msg,
		Cause:       err,
		Details:     details,
		Recoverable: recoverable,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsUserFacing reports whether err classifies as a user-facing kind.
func IsUserFacing(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.UserFacing()
}

// IsCritical reports whether err classifies as a critical kind. Errors that
// are not *Error values count as Unknown and are therefore critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return true
	}
	return de.Critical()
}

// FormatForUser returns the user-safe message for err.
func FormatForUser(err error) string {
	var de *Error
	if !errors.As(err, &de) {
		return GenericUserMessage
	}
	return de.UserMessage()
}

// LogError records e at a level derived from its classification: user-facing
// kinds at INFO, critical kinds at ERROR, everything else at WARN. Details are
// emitted separately at DEBUG.
func LogError(ctx context.Context, logger *slog.Logger, e *Error, attrs ...slog.Attr) {
	level := slog.LevelWarn
	switch {
	case e.UserFacing():
		level = slog.LevelInfo
	case e.Critical():
		level = slog.LevelError
	}

	base := make([]slog.Attr, 0, len(attrs)+3)
	base = append(base,
		slog.String("error_kind", string(e.Kind)),
		slog.Bool("recoverable", e.Recoverable),
		slog.Any("error", e),
	)
	base = append(base, attrs...)
	logger.LogAttrs(ctx, level, e.Message, base...)

	if len(e.Details) > 0 {
		logger.LogAttrs(ctx, slog.LevelDebug, "error details",
			slog.String("error_kind", string(e.Kind)),
			slog.Any("details", e.Details),
		)
	}
}
