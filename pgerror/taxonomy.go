// Package pgerror implements the client-observed error taxonomy: a small
// hierarchy of categories mirroring the standard database-driver exception
// hierarchy (PEP 249 and friends), plus the severity/code/hint/detail/source
// decorators used to carry PostgreSQL wire-protocol metadata on any error
// value regardless of its category.
package pgerror

import (
	"errors"
	"fmt"

	"github.com/go-pgwire/pgwire/codes"
)

// Category classifies an error into the exception hierarchy described by the
// client specification: Warning, InterfaceError, and the DatabaseError
// subtree (DataError, OperationalError, IntegrityError, InternalError,
// ProgrammingError, NotSupportedError).
type Category int

const (
	// CategoryNone is the zero value: no category has been attached.
	CategoryNone Category = iota
	CategoryWarning
	CategoryInterface
	CategoryData
	CategoryOperational
	CategoryIntegrity
	CategoryInternal
	CategoryProgramming
	CategoryNotSupported
)

func (c Category) String() string {
	switch c {
	case CategoryWarning:
		return "Warning"
	case CategoryInterface:
		return "InterfaceError"
	case CategoryData:
		return "DataError"
	case CategoryOperational:
		return "OperationalError"
	case CategoryIntegrity:
		return "IntegrityError"
	case CategoryInternal:
		return "InternalError"
	case CategoryProgramming:
		return "ProgrammingError"
	case CategoryNotSupported:
		return "NotSupportedError"
	default:
		return "Error"
	}
}

type categorized struct {
	cause    error
	category Category
}

func (c *categorized) Error() string { return fmt.Sprintf("%s: %s", c.category, c.cause.Error()) }
func (c *categorized) Unwrap() error { return c.cause }

// WithCategory decorates err with the given taxonomy category. A nil err
// returns nil.
func WithCategory(err error, category Category) error {
	if err == nil {
		return nil
	}
	return &categorized{cause: err, category: category}
}

// GetCategory walks the error chain looking for the innermost attached
// category (the one closest to the original cause), returning CategoryNone
// if the chain carries none.
func GetCategory(err error) Category {
	for err != nil {
		if c, ok := err.(*categorized); ok {
			if inner := GetCategory(c.cause); inner != CategoryNone {
				return inner
			}
			return c.category
		}
		err = errors.Unwrap(err)
	}
	return CategoryNone
}

// Is reports whether err carries the given category anywhere in its chain.
func Is(err error, category Category) bool {
	return GetCategory(err) == category
}

// newf builds a message-only error decorated with category, code and
// severity in one call — the common case for every constructor below.
func newf(category Category, code codes.Code, severity Severity, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return WithCategory(WithSeverity(WithCode(err, code), severity), category)
}

// NewInterfaceError builds an error for transport failures, SSL negotiation
// failures, use of a closed cursor/connection, or MD5 authentication
// rejection.
func NewInterfaceError(code codes.Code, format string, args ...any) error {
	return newf(CategoryInterface, code, LevelError, format, args...)
}

// NewDataError builds an error for a value that cannot be represented or
// decoded (codec-layer rejections that are about the data itself).
func NewDataError(code codes.Code, format string, args ...any) error {
	return newf(CategoryData, code, LevelError, format, args...)
}

// NewOperationalError builds an error for a database operation that failed
// for reasons outside the application's control (e.g. a server-side
// disconnect mid-query).
func NewOperationalError(code codes.Code, format string, args ...any) error {
	return newf(CategoryOperational, code, LevelError, format, args...)
}

// NewIntegrityError builds an error for a referential/constraint violation
// surfaced by the server.
func NewIntegrityError(code codes.Code, format string, args ...any) error {
	return newf(CategoryIntegrity, code, LevelError, format, args...)
}

// NewInternalError builds an error for an unexpected or unrecognized wire
// message, or other condition that indicates a bug rather than user error.
func NewInternalError(format string, args ...any) error {
	return newf(CategoryInternal, codes.Internal, LevelFatal, format, args...)
}

// NewProgrammingError builds an error for a server-reported ErrorResponse
// (outside of authentication failure) or misuse of the cursor API.
func NewProgrammingError(code codes.Code, severity Severity, format string, args ...any) error {
	return newf(CategoryProgramming, code, severity, format, args...)
}

// NewNotSupportedError builds an error for an unknown host type, an
// unsupported authentication method, or an OID with no registered codec.
func NewNotSupportedError(format string, args ...any) error {
	return newf(CategoryNotSupported, codes.FeatureNotSupported, LevelError, format, args...)
}

// NewWarning builds a non-fatal advisory error (a NOTICE-level condition the
// caller chooses to treat as an error return rather than a subscription
// event).
func NewWarning(format string, args ...any) error {
	return newf(CategoryWarning, codes.Warning, LevelWarning, format, args...)
}

// FromServerError turns a server ErrorResponse field-dict into the
// appropriate category: MD5 authentication failure (SQLSTATE 28000) becomes
// an InterfaceError per the specification; every other server-reported error
// becomes a ProgrammingError carrying the server's own severity and code.
func FromServerError(code codes.Code, severity Severity, message string) error {
	if code == codes.InvalidAuthorizationSpecification {
		return NewInterfaceError(code, "md5 password authentication failed")
	}

	return NewProgrammingError(code, severity, "%s", message)
}
