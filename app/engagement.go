package app

import (
	"context"

	"github.com/CrestNiraj12/giggles/domain"
)

// LikeResult is the authoritative state after a like or unlike.
// HasCount is false when the backend omitted like_count.
type LikeResult struct {
	LikeCount int
	HasCount  bool
}

// CommentResult is the authoritative state after posting a comment.
type CommentResult struct {
	Comment      domain.Comment
	CommentCount int
	HasCount     bool
}

// EngagementService performs the current user's reactions on videos.
type EngagementService interface {
	Like(ctx context.Context, videoID string) (LikeResult, error)
	Unlike(ctx context.Context, videoID string) (LikeResult, error)

	// LikedVideoIDs returns the ids of videos the current user has liked.
	LikedVideoIDs(ctx context.Context) ([]string, error)

	// PostComment publishes a comment on a video.
	PostComment(ctx context.Context, videoID, text string) (CommentResult, error)
}
