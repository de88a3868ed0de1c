package resilience

import (
	"errors"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError marks err as safe to retry.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient returns true if the error (or any error in its chain) is a TransientError,
// or looks like lock contention on a local file: SQLITE_BUSY, SQLITE_LOCKED or EAGAIN.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EBUSY) {
		return true
	}

	// The sqlite driver reports result codes only in the message.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"database is locked",
		"database table is locked",
		"sqlite_busy",
		"sqlite_locked",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
