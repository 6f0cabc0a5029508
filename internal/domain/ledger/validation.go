package ledger

import (
	"strings"

	"github.com/rpggio/lapledger/internal/laptime"
)

// ValidateAddInput validates a new time entry.
func ValidateAddInput(req AddRequest) error {
	if !laptime.IsValidStrict(req.Time) {
		return ErrInvalidInput
	}
	if strings.TrimSpace(req.Circuit) == "" || strings.TrimSpace(req.ProfileID) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ValidateEditInput validates replacement fields for an existing entry.
func ValidateEditInput(req EditRequest) error {
	for _, v := range []string{req.Time, req.Circuit, req.Character, req.Vehicle} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidInput
		}
	}
	if !laptime.IsValidStrict(req.Time) {
		return ErrInvalidInput
	}
	return nil
}
