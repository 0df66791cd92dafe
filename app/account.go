package app

import (
	"context"

	"github.com/CrestNiraj12/giggles/domain"
)

// FollowResult is the authoritative follower count after a follow toggle.
type FollowResult struct {
	Followers int
	HasCount  bool
}

// AccountService provides profile and relationship operations.
type AccountService interface {
	// CurrentUserID returns the injected identity of the client.
	CurrentUserID() string

	// Profile returns a user's public stats.
	Profile(ctx context.Context, userID string) (domain.Profile, error)

	// Follow makes the current user follow userID.
	Follow(ctx context.Context, userID string) (FollowResult, error)

	// Unfollow reverses Follow.
	Unfollow(ctx context.Context, userID string) (FollowResult, error)
}
