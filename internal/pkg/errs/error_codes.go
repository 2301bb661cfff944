/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
and in responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrFormParseFailed indicates failure to parse multipart form data.
	ErrFormParseFailed = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Gallery and Document Business Logic Errors
const (
	// ErrMissingIdentifier indicates a delete request without a name or url to match on.
	ErrMissingIdentifier = 2001

	// ErrMissingName indicates a sold-delete request without the required name.
	ErrMissingName = 2002

	// ErrGalleryItemNotFound indicates the delete target is absent from the gallery.
	ErrGalleryItemNotFound = 2101
)

// 3xxx: Authorization Errors
const (
	// ErrAccessDenied indicates a state mutation attempted with a wrong or missing dev key.
	ErrAccessDenied = 3001

	// ErrUnauthorized indicates a protected mutation from a session that never unlocked dev mode.
	ErrUnauthorized = 3002

	// ErrDevKeyMissing indicates the server itself has no dev key configured.
	ErrDevKeyMissing = 3003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates a document or file write failure.
	ErrStorageFailed = 5001
)
