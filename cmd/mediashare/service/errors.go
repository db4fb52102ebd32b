package service

import (
	"errors"
	"fmt"
)

// Reason classifies why an authorization or state-machine decision failed.
// Every failure the core produces carries exactly one of these.
type Reason string

// Decision and failure reasons
const (
	ReasonUnauthenticated          Reason = "unauthenticated"
	ReasonForbidden                Reason = "forbidden"
	ReasonFlagged                  Reason = "flagged"
	ReasonAdministrativelyApproved Reason = "administratively_approved"
	ReasonEmptyNote                Reason = "empty_note"
	ReasonTextTooLong              Reason = "text_too_long"
	ReasonNotFound                 Reason = "not_found"
)

// Sentinel errors, one per reason. Callers match with errors.Is and map
// each kind to a user-facing message or redirect; none is fatal.
var (
	ErrUnauthenticated          = errors.New("operator is not authenticated")
	ErrForbidden                = errors.New("operator lacks permission")
	ErrFlagged                  = errors.New("resource is flagged")
	ErrAdministrativelyApproved = errors.New("a super-agent has already ruled on this resource")
	ErrEmptyNote                = errors.New("note text is empty")
	ErrTextTooLong              = errors.New("note text too long")
	ErrNotFound                 = errors.New("not found")
)

// ErrInvalidMetadata rejects a metadata document that is not a valid
// JSON merge patch
var ErrInvalidMetadata = errors.New("invalid metadata patch")

// Err maps a reason to its sentinel error, nil for the zero Reason
func (r Reason) Err() error {
	switch r {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonForbidden:
		return ErrForbidden
	case ReasonFlagged:
		return ErrFlagged
	case ReasonAdministrativelyApproved:
		return ErrAdministrativelyApproved
	case ReasonEmptyNote:
		return ErrEmptyNote
	case ReasonTextTooLong:
		return ErrTextTooLong
	case ReasonNotFound:
		return ErrNotFound
	}
	return nil
}

// StorageError wraps a repository failure. The core never retries; the
// original error is surfaced unchanged to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
