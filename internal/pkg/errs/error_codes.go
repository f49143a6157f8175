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

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005

	// ErrInvalidUserID indicates that a supplied user identifier is not a well-formed UUID.
	ErrInvalidUserID = 1101
)

// 2xxx: Messaging Errors
const (
	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2001
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidName indicates a missing or malformed display name during registration.
	ErrInvalidName = 3001

	// ErrInvalidPhone indicates a missing or malformed phone number.
	ErrInvalidPhone = 3002

	// ErrInvalidEmail indicates a missing or malformed email address.
	ErrInvalidEmail = 3003

	// ErrInvalidPassword indicates a password outside the allowed length range.
	ErrInvalidPassword = 3004

	// ErrUserAlreadyExists indicates that the phone number or email is already registered.
	ErrUserAlreadyExists = 3005

	// ErrInvalidCredentials indicates a failed email/password verification.
	ErrInvalidCredentials = 3006

	// ErrUserNotFound indicates that no account matches the requested identifier.
	ErrUserNotFound = 3007

	// ErrAlreadyLoggedIn indicates an authenticated caller hitting a guest-only endpoint.
	ErrAlreadyLoggedIn = 3008

	// ErrMissingToken indicates a connection or request without a credential token.
	ErrMissingToken = 3101

	// ErrInvalidToken indicates a credential token that failed signature or expiry verification.
	ErrInvalidToken = 3102

	// ErrUnauthorized indicates a request requiring authentication that carried none.
	ErrUnauthorized = 3103
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates that the persistence layer could not serve the request.
	ErrStorageUnavailable = 5001
)
