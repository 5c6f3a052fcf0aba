package cli

import (
	"errors"

	"github.com/mcoot/spiderleague/internal/model"
)

// CLIError is the JSON shape of a failed command
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps a CLIError
type ErrorResponse struct {
	Error CLIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotConfigured      = "NOT_CONFIGURED"
	CodeRemoteFailure      = "REMOTE_FAILURE"
	CodeMalformedDocument  = "MALFORMED_DOCUMENT"
	CodeDocumentNotLoaded  = "DOCUMENT_NOT_LOADED"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeNotLoggedIn        = "NOT_LOGGED_IN"
	CodeInsufficientCoins  = "INSUFFICIENT_COINS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Exit statuses
const (
	exitFailure = 1
	exitUsage   = 2
)

// errorCode classifies err for JSON output and the exit status
func errorCode(err error) (string, int) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return CodeInvalidRequest, exitUsage
	case errors.Is(err, model.ErrConfigurationMissing):
		return CodeNotConfigured, exitUsage
	case errors.Is(err, model.ErrMalformedDocument):
		return CodeMalformedDocument, exitFailure
	case errors.Is(err, model.ErrNetworkOrAuthFailure):
		return CodeRemoteFailure, exitFailure
	case errors.Is(err, errNotLoaded):
		return CodeDocumentNotLoaded, exitFailure
	case errors.Is(err, model.ErrUsernameTaken):
		return CodeUsernameTaken, exitFailure
	case errors.Is(err, model.ErrInvalidCredentials):
		return CodeInvalidCredentials, exitFailure
	case errors.Is(err, model.ErrAccountNotFound):
		return CodeAccountNotFound, exitFailure
	case errors.Is(err, model.ErrNotLoggedIn):
		return CodeNotLoggedIn, exitFailure
	case errors.Is(err, model.ErrInsufficientCoins):
		return CodeInsufficientCoins, exitFailure
	default:
		return CodeInternalError, exitFailure
	}
}
