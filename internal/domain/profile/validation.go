package profile

import "strings"

// Placeholder is the value pickers show before a real choice is made.
const Placeholder = "Select..."

// IsPlaceholder reports whether v is a picker placeholder rather than a value.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, Placeholder) || strings.EqualFold(v, "select")
}

// ValidateCreateInput validates the attributes of a new profile.
func ValidateCreateInput(req CreateRequest) error {
	for _, v := range []string{req.Character, req.Skin, req.Vehicle} {
		if strings.TrimSpace(v) == "" || IsPlaceholder(v) {
			return ErrInvalidInput
		}
	}
	return nil
}
