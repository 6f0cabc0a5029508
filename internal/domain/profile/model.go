package profile

import "time"

// Profile is a saved character, skin and vehicle combination.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Character     string    `json:"character"`
	CharacterSkin string    `json:"characterSkin"`
	Vehicle       string    `json:"vehicle"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Matches reports whether p has exactly the given attribute triple.
func (p Profile) Matches(character, skin, vehicle string) bool {
	return p.Character == character && p.CharacterSkin == skin && p.Vehicle == vehicle
}

// DisplayName is the name given to profiles created interactively.
func DisplayName(character, vehicle string) string {
	return character + " + " + vehicle
}

// ImportedName is the name given to profiles synthesized during CSV import.
func ImportedName(character, skin string) string {
	return character + " (" + skin + ")"
}
