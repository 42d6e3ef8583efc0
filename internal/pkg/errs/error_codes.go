/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004
)

// 2xxx: Room and Content Business Logic Errors
const (
	// ErrInvalidJoinRequest indicates a join attempt with a missing user name or room ID.
	ErrInvalidJoinRequest = 2101

	// ErrRoomIDMissing indicates that an operation that requires a room ID was sent without one.
	ErrRoomIDMissing = 2102

	// ErrRestrictedContent indicates that the message body matched the restricted-token set.
	ErrRestrictedContent = 2201
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates that the durable message store failed to serve a read or write.
	ErrStoreUnavailable = 5001
)
