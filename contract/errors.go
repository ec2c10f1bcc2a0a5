package contract

import (
	"fmt"

	"github.com/erraggy/oasguard/oaserrors"
)

// Kind classifies a validation error.
type Kind int

const (
	// KindSchemaViolation is a keyword of the contract that the message does not satisfy.
	KindSchemaViolation Kind = iota
	// KindParse is a body that is not valid JSON.
	KindParse
	// KindMethodNotAllowed is a request whose method has no operation on the matched path.
	KindMethodNotAllowed
	// KindNotFound is a request path that matches no path template.
	KindNotFound
	// KindNotImplemented is a media type whose bodies cannot be validated.
	KindNotImplemented
	// KindConfiguration is a problem with the document itself, found while validating.
	KindConfiguration
	// KindBodyTooLarge is a body that exceeds the configured size limit.
	KindBodyTooLarge
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSchemaViolation:
		return "schema violation"
	case KindParse:
		return "parse error"
	case KindMethodNotAllowed:
		return "method not allowed"
	case KindNotFound:
		return "not found"
	case KindNotImplemented:
		return "not implemented"
	case KindConfiguration:
		return "internal configuration error"
	case KindBodyTooLarge:
		return "body too large"
	default:
		return "unknown"
	}
}

// ValidationError is one violation: where it happened and what is wrong.
type ValidationError struct {
	ctx     Context
	message string
	kind    Kind
}

// NewError creates a schema violation at ctx.
func NewError(ctx Context, message string) ValidationError {
	return ValidationError{ctx: ctx, message: message}
}

func newKindError(ctx Context, kind Kind, message string) ValidationError {
	return ValidationError{ctx: ctx, message: message, kind: kind}
}

// Context returns the context the violation was found in.
func (e ValidationError) Context() Context { return e.ctx }

// Message returns the human readable description.
func (e ValidationError) Message() string { return e.message }

// Kind returns the error category.
func (e ValidationError) Kind() Kind { return e.kind }

// StatusCode returns the HTTP status code attached to the violation.
func (e ValidationError) StatusCode() int { return e.ctx.statusCode }

// Error implements error.
func (e ValidationError) Error() string {
	return e.ctx.Key() + ": " + e.message
}

// Errors is an ordered list of violations. The empty (or nil) list means the
// value is valid.
type Errors []ValidationError

// Add appends a single violation.
func (e *Errors) Add(err ValidationError) {
	*e = append(*e, err)
}

// Addf appends a schema violation at ctx with a formatted message.
func (e *Errors) Addf(ctx Context, format string, args ...any) {
	*e = append(*e, NewError(ctx, fmt.Sprintf(format, args...)))
}

// AddAll appends every violation of other. A nil or empty list is a no-op.
func (e *Errors) AddAll(other Errors) {
	if len(other) == 0 {
		return
	}
	*e = append(*e, other...)
}

// Len returns the number of violations.
func (e Errors) Len() int { return len(e) }

// Empty reports whether there are no violations.
func (e Errors) Empty() bool { return len(e) == 0 }

// StatusCode returns the status code of the first violation, or 0 when empty.
func (e Errors) StatusCode() int {
	if len(e) == 0 {
		return 0
	}
	return e[0].StatusCode()
}

// HasKind reports whether any violation has the given kind.
func (e Errors) HasKind(k Kind) bool {
	for _, err := range e {
		if err.kind == k {
			return true
		}
	}
	return false
}

// ofKind returns the violations of the given kind.
func (e Errors) ofKind(k Kind) Errors {
	var out Errors
	for _, err := range e {
		if err.kind == k {
			out = append(out, err)
		}
	}
	return out
}

// Err returns nil for an empty list and an *oaserrors.ValidationError
// summarising the list otherwise.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &oaserrors.ValidationError{
		Location:   e[0].ctx.Key(),
		StatusCode: e[0].StatusCode(),
		Message:    e[0].message,
		Count:      len(e),
	}
}
