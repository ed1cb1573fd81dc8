package apierror

import "errors"

// Kind discriminators exposed to clients in the response "type" field, so
// callers can branch on type rather than parsing message text.
const (
	KindBadRequest   = "BadRequestError"
	KindUnauthorized = "UnauthorizedError"
	KindConflict     = "ConflictError"
	KindInternal     = "InternalServerError"
)

// Error is a client-visible domain error with an HTTP status and a kind
// discriminator. Handlers return it as a value; the response package
// translates it at the pipeline boundary.
type Error struct {
	Status  int
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest covers invalid client input and not-found-by-lookup failures.
func BadRequest(message string) *Error {
	return &Error{Status: 400, Kind: KindBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: 401, Kind: KindUnauthorized, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: 409, Kind: KindConflict, Message: message}
}

// Internal indicates a server-side invariant violation, such as a row
// vanishing between a write and its re-read.
func Internal(message string) *Error {
	return &Error{Status: 500, Kind: KindInternal, Message: message}
}

// From coerces any error into an *Error. Unkinded errors default to 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Status: 500, Kind: KindInternal, Message: err.Error()}
}
