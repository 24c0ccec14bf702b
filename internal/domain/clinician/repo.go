package clinician

import "context"

// ProfileStore persists the single clinician profile of this installation.
// GetUserProfile returns nil, nil when no profile has been saved.
type ProfileStore interface {
	SaveUserProfile(ctx context.Context, p Profile) error
	GetUserProfile(ctx context.Context) (*Profile, error)
	IsUserOnboarded(ctx context.Context) (bool, error)
	ClearAll(ctx context.Context) error
}
