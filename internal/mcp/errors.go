package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		return &APIError{Code: "PROFILE_NOT_FOUND", Message: "profile not found", RecoveryHint: "Call list_profiles for valid ids"}
	case errors.Is(err, profile.ErrInvalidInput):
		return &APIError{Code: "INVALID_PROFILE", Message: "character, skin and vehicle are required", RecoveryHint: "Pick real values, not the Select... placeholder"}
	case errors.Is(err, ledger.ErrEntryNotFound):
		return &APIError{Code: "TIME_NOT_FOUND", Message: "time entry not found", RecoveryHint: "Call list_times for valid ids"}
	case errors.Is(err, ledger.ErrInvalidInput):
		return &APIError{Code: "INVALID_TIME", Message: "time must look like M:SS.mmm and circuit and profile are required", RecoveryHint: "Seconds run 00-59, e.g. 1:23.456"}
	case errors.Is(err, csvsync.ErrHeaderMismatch):
		return &APIError{Code: "CSV_HEADER_MISMATCH", Message: err.Error(), RecoveryHint: "Read lapledger://docs/csv-format for the required columns"}
	case errors.Is(err, csvsync.ErrInvalidMode):
		return &APIError{Code: "INVALID_MODE", Message: err.Error(), RecoveryHint: "Use replace, append or cancel"}
	case errors.Is(err, csvsync.ErrFormat):
		return &APIError{Code: "CSV_FORMAT", Message: err.Error(), RecoveryHint: "Send a header row and at least one data row"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
