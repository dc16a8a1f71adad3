package utils

import "net/http"

type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindConflict           ErrorKind = "conflict"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindAuth               ErrorKind = "unauthorized"
	KindInvalidOrExpired   ErrorKind = "invalid_or_expired"
	KindTooManyRequests    ErrorKind = "too_many_requests"
	KindServer             ErrorKind = "server_error"
)

// AppError is a domain failure that knows which HTTP status it surfaces as.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInvalidCredentials, KindInvalidOrExpired:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func ConflictError(message string) error {
	return &AppError{Kind: KindConflict, Message: message}
}

func NotFoundError(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

func InvalidCredentialsError(message string) error {
	return &AppError{Kind: KindInvalidCredentials, Message: message}
}

func InvalidOrExpiredError(message string) error {
	return &AppError{Kind: KindInvalidOrExpired, Message: message}
}

func TooManyRequestsError(message string) error {
	return &AppError{Kind: KindTooManyRequests, Message: message}
}

// ServerError hides cause from clients; Message is what the caller sees.
func ServerError(message string, cause error) error {
	return &AppError{Kind: KindServer, Message: message, Err: cause}
}
