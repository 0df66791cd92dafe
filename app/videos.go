package app

import (
	"context"

	"github.com/CrestNiraj12/giggles/domain"
)

// VideoService reads videos and their comment threads.
type VideoService interface {
	// ListVideos returns the feed in backend order.
	ListVideos(ctx context.Context) ([]domain.Video, error)

	// Video returns a single video with up to commentsLimit comments.
	Video(ctx context.Context, id string, commentsLimit int) (domain.Video, []domain.Comment, error)

	// VideosByUser returns the videos posted by a user.
	VideosByUser(ctx context.Context, userID string) ([]domain.Video, error)
}
