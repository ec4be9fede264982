package mission

import "fmt"

// MissionError carries a stable code the HTTP layer maps to a status.
type MissionError struct {
	Code    string
	Message string
}

func (e *MissionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeUnauthenticated  = "unauthenticated"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "notFound"
	CodeInvalidInput     = "invalidInput"
	CodePriceUnavailable = "priceUnavailable"
	CodeConflict         = "conflict"
)

func NewUnauthenticatedError(msg string) error {
	return &MissionError{Code: CodeUnauthenticated, Message: msg}
}

func NewForbiddenError(msg string) error {
	return &MissionError{Code: CodeForbidden, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &MissionError{Code: CodeNotFound, Message: msg}
}

func NewInvalidInputError(msg string) error {
	return &MissionError{Code: CodeInvalidInput, Message: msg}
}

func NewPriceUnavailableError(msg string) error {
	return &MissionError{Code: CodePriceUnavailable, Message: msg}
}

func NewConflictError(msg string) error {
	return &MissionError{Code: CodeConflict, Message: msg}
}

// CodeOf extracts the error code, or empty for non-mission errors.
func CodeOf(err error) string {
	if me, ok := err.(*MissionError); ok {
		return me.Code
	}
	return ""
}
