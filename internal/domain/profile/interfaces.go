package profile

import "context"

// Repository persists the profile list and the active selection.
type Repository interface {
	LoadProfiles(ctx context.Context) ([]Profile, error)
	SaveProfiles(ctx context.Context, profiles []Profile) error
	LoadSelected(ctx context.Context) (string, error)
	SaveSelected(ctx context.Context, id string) error
}
