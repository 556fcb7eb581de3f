package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorCode is the numeric code carried by an ERR line.
type ErrorCode int

const (
	ErrorCodeInvalidCommand        ErrorCode = 100
	ErrorCodeInvalidMovement       ErrorCode = 101
	ErrorCodeNotPlayerTurn         ErrorCode = 102
	ErrorCodeOptionNonModifiable   ErrorCode = 103
	ErrorCodeOptionValueNotUpdated ErrorCode = 104
	ErrorCodeFailedToStartMatch    ErrorCode = 105
	ErrorCodeFailedToEndMatch      ErrorCode = 106

	// ErrorCodeUnknown stands in for any code the client does not model and
	// for ERR lines that could not be parsed at all.
	ErrorCodeUnknown ErrorCode = 999
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeInvalidCommand:
		return "InvalidCommand"
	case ErrorCodeInvalidMovement:
		return "InvalidMovement"
	case ErrorCodeNotPlayerTurn:
		return "NotPlayerTurn"
	case ErrorCodeOptionNonModifiable:
		return "OptionNonModifiable"
	case ErrorCodeOptionValueNotUpdated:
		return "OptionValueNotUpdated"
	case ErrorCodeFailedToStartMatch:
		return "FailedToStartMatch"
	case ErrorCodeFailedToEndMatch:
		return "FailedToEndMatch"
	default:
		return "Unknown"
	}
}

func errorCodeFrom(raw int) ErrorCode {
	code := ErrorCode(raw)
	if code.String() == "Unknown" {
		return ErrorCodeUnknown
	}
	return code
}

// ServerError is the decoded payload of an ERR line. UserID is nil when the
// server did not attribute the error to a player.
type ServerError struct {
	UserID      *uuid.UUID
	Code        ErrorCode
	Description string
}

func (e ServerError) Error() string {
	if e.UserID == nil {
		return fmt.Sprintf("server error %d (%s): %s", e.Code, e.Code, e.Description)
	}
	return fmt.Sprintf("server error %d (%s) for %s: %s", e.Code, e.Code, e.UserID, e.Description)
}

func unknownServerError(description string) ServerError {
	return ServerError{Code: ErrorCodeUnknown, Description: description}
}
