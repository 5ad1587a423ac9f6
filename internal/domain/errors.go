package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPool          = errors.New("model pool is empty")
	ErrStartupFailed      = errors.New("start chat session")
	ErrQuotaExceeded      = errors.New("backend quota exceeded")
	ErrMigrationFailed    = errors.New("session migration failed")
	ErrPoolExhausted      = errors.New("all models in the pool are over quota")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrUnknownPromptSlot  = errors.New("unknown system prompt slot")
	ErrMissingAPIKey      = errors.New("api key is missing")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrSessionClosed      = errors.New("chat session is closed")
	ErrSecretNotFound     = errors.New("secret not found")
)

type ErrorKind string

const (
	ErrorKindQuotaExceeded ErrorKind = "quota_exceeded"
	ErrorKindInvalidModel  ErrorKind = "invalid_model"
	ErrorKindAuth          ErrorKind = "auth"
	ErrorKindOther         ErrorKind = "other"
)

// BackendError classifies a failure reported by a backend session or by its
// construction.
type BackendError struct {
	Kind   ErrorKind
	Model  ModelID
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	msg := "backend error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (%s, status %d): %s", e.Model, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s (%s): %s", e.Model, e.Kind, msg)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.Kind == ErrorKindQuotaExceeded
}

// ClassifyKind reports the kind of the first BackendError in err's chain.
// Anything else is ErrorKindOther.
func ClassifyKind(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) && backendErr.Kind != "" {
		return backendErr.Kind
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return ErrorKindQuotaExceeded
	}

	return ErrorKindOther
}
