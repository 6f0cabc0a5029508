package assets

import (
	"errors"
	"path"
	"regexp"
	"strings"
)

// Kind identifies an asset family.
type Kind string

const (
	KindCharacter Kind = "character"
	KindCircuit   Kind = "circuit"
	KindVehicle   Kind = "vehicle"
)

// ErrUnknownKind indicates an asset kind outside the known families.
var ErrUnknownKind = errors.New("unknown asset kind")

var (
	disallowed  = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	underscores = regexp.MustCompile(`_+`)
)

// Sanitize reduces a display name to the file stem used by the asset
// scrapers. Both sides must agree on this rule or lookups miss.
func Sanitize(name string) string {
	s := disallowed.ReplaceAllString(name, "")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Path returns the relative image path for name within kind's directory.
func Path(kind Kind, name string) (string, error) {
	switch kind {
	case KindCharacter, KindCircuit, KindVehicle:
	default:
		return "", ErrUnknownKind
	}
	return path.Join(string(kind)+"s", Sanitize(name)+".png"), nil
}

// Resolver joins asset paths onto a configured base directory.
type Resolver struct {
	BaseDir string
}

// Path resolves name under the resolver's base directory.
func (r Resolver) Path(kind Kind, name string) (string, error) {
	rel, err := Path(kind, name)
	if err != nil {
		return "", err
	}
	if r.BaseDir == "" {
		return rel, nil
	}
	return path.Join(r.BaseDir, rel), nil
}
