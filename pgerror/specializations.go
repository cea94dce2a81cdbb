package pgerror

import "github.com/go-pgwire/pgwire/codes"

// Specialized sentinel errors named by the client specification. Each is
// wrapped into the taxonomy category it belongs to so that GetCategory and
// Is still classify it correctly, while callers can also compare against the
// sentinel directly with errors.Is.
var (
	// ErrCopyQueryOrTableRequired is returned by CopyFrom/CopyTo when neither
	// a table name nor a raw query was supplied.
	ErrCopyQueryOrTableRequired = newSentinel(CategoryProgramming, codes.Syntax, "copy requires either a table name or a query")

	// ErrCopyQueryWithoutStream is returned when a COPY statement is executed
	// without a stream to read from (COPY FROM) or write to (COPY TO).
	ErrCopyQueryWithoutStream = newSentinel(CategoryProgramming, codes.Syntax, "copy statement requires a stream")

	// ErrCursorClosed is returned by Cursor.Next once Close has been
	// called.
	ErrCursorClosed = newSentinel(CategoryInterface, codes.ConnectionDoesNotExist, "cursor is closed")

	// ErrQueryParameterParse is returned by the placeholder translator when
	// the query violates the rules of its declared paramstyle.
	ErrQueryParameterParse = newSentinel(CategoryProgramming, codes.Syntax, "unable to parse query parameters")

	// ErrArrayContentEmpty is returned when inspecting an empty, or
	// all-nil, slice: there is no element to infer a host type from.
	ErrArrayContentEmpty = newSentinel(CategoryProgramming, codes.Syntax, "array content is empty")

	// ErrArrayContentNotHomogenous is returned when an array's non-nil
	// elements are not all the same host type.
	ErrArrayContentNotHomogenous = newSentinel(CategoryProgramming, codes.Syntax, "array content is not homogenous")

	// ErrArrayDimensionsNotConsistent is returned when an array's sub-lists
	// do not all share the same length at a given dimension.
	ErrArrayDimensionsNotConsistent = newSentinel(CategoryProgramming, codes.Syntax, "array dimensions are not consistent")

	// ErrArrayContentNotSupported is returned when an array's element host
	// type has no registered encoder.
	ErrArrayContentNotSupported = newSentinel(CategoryNotSupported, codes.FeatureNotSupported, "array element type is not supported")
)

func newSentinel(category Category, code codes.Code, message string) error {
	return WithCategory(WithSeverity(WithCode(sentinelError(message), code), LevelError), category)
}

// sentinelError is a plain string error, distinct from fmt.errorString only
// so that equality comparisons in tests are straightforward.
type sentinelError string

func (e sentinelError) Error() string { return string(e) }
