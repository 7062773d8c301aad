package warehouse

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidUnitCode       = errors.New("warehouse: invalid unit code")
	ErrInvalidVolumeUnit     = fmt.Errorf("%w: unsupported volume unit", ErrInvalidUnitCode)
	ErrUnknownSalutationCode = errors.New("warehouse: unknown salutation code")
	ErrUnsupportedLanguage   = errors.New("warehouse: unsupported language")
	ErrInvalidEAN            = errors.New("warehouse: EAN is not numeric")

	// Submission errors
	ErrESDNotAllowed       = errors.New("warehouse: ESD article not allowed")
	ErrDuplicateSubmission = errors.New("warehouse: submission already in progress")
	ErrInvalidOrderRequest = errors.New("warehouse: invalid order request")
	ErrInvalidRecord       = errors.New("warehouse: invalid record")
	ErrUnexpectedShape     = errors.New("warehouse: unexpected return value")
	ErrReferenceNotFound   = errors.New("warehouse: reference number not found")
	ErrUnknownMessageType  = errors.New("warehouse: unknown message type")
)

// Postal code failure codes
const (
	ZCodeLengthMismatch = -2
	ZCodeContainsLetter = -3
	ZCodeInternal       = -4
)

// ValidationFailure is a recoverable input failure. It is surfaced to the
// caller and never retried.
type ValidationFailure struct {
	ZCode   int
	Message string
}

// Error implements the error interface
func (f *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed (%d): %s", f.ZCode, f.Message)
}
