package service

import (
	"errors"
	"fmt"

	"github.com/metrilive/internal/facebook"
)

var (
	ErrInvalidURL            = errors.New("could not extract a video id from the url")
	ErrAccessDenied          = errors.New("access denied: you are not allowed to view data of this page")
	ErrNoCredentialAvailable = errors.New("no facebook access token found for the user or any administrator")
	ErrVideoNotFound         = errors.New("video not found")
	ErrSourcePageUnknown     = errors.New("could not identify the page that published the video")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrTokenRequired         = errors.New("access token is required")
)

// ProviderError is a failed Graph API call translated for callers. Code and
// Subcode keep the Graph error codes for diagnostics; Message never carries
// the raw provider response.
type ProviderError struct {
	Op      string
	Code    int
	Subcode int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	if e.Subcode != 0 {
		return fmt.Sprintf("%s (facebook code %d/%d)", e.Message, e.Code, e.Subcode)
	}
	return fmt.Sprintf("%s (facebook code %d)", e.Message, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(op string, err error) *ProviderError {
	pe := &ProviderError{
		Op:      op,
		Message: fmt.Sprintf("facebook request failed: %s", op),
		Err:     err,
	}
	if gerr, ok := facebook.AsGraphError(err); ok {
		pe.Code = gerr.Code
		pe.Subcode = gerr.Subcode
		if gerr.IsObjectUnavailable() {
			pe.Message = "facebook denied access or the object does not exist; check that the app is live and that you manage the video's page"
		}
	}
	return pe
}

// StorageError wraps a persistence failure. It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageFailure(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
