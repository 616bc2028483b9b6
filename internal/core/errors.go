package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeUserNotFound      = "user_not_found"
	ErrCodeSenderNotFound    = "sender_not_found"
	ErrCodePersistenceFailed = "persistence_failed"
	ErrCodeNotInRoom         = "not_in_room"
	ErrCodeNotConnected      = "not_connected"
	ErrCodeBadRequest        = "bad_request"
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeInternal          = "internal"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSenderNotFound    = errors.New("sender not found")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrLookupFailed      = errors.New("user lookup failed")
	ErrNotInRoom         = errors.New("not in room")
	ErrNotConnected      = errors.New("connection not registered")
	ErrBadRequest        = errors.New("bad request")

	// Per-connection delivery failures. They are logged, never returned to the sender.
	ErrDeliveryFailed   = errors.New("delivery failed")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSlowConsumer     = errors.New("slow consumer")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ErrorCode maps an error returned by the core to its protocol code.
func ErrorCode(err error) string {
	var ce *CoreError
	switch {
	case errors.As(err, &ce):
		return ce.Code
	case errors.Is(err, ErrUserNotFound):
		return ErrCodeUserNotFound
	case errors.Is(err, ErrSenderNotFound):
		return ErrCodeSenderNotFound
	case errors.Is(err, ErrPersistenceFailed):
		return ErrCodePersistenceFailed
	case errors.Is(err, ErrNotInRoom):
		return ErrCodeNotInRoom
	case errors.Is(err, ErrNotConnected):
		return ErrCodeNotConnected
	case errors.Is(err, ErrBadRequest):
		return ErrCodeBadRequest
	default:
		return ErrCodeInternal
	}
}

// toCoreError converts err into the form delivered to clients.
// Internal failures are not described to the client.
func toCoreError(err error) *CoreError {
	code := ErrorCode(err)
	if code == ErrCodeInternal {
		return coreError(code, "internal error")
	}
	return coreError(code, err.Error())
}
