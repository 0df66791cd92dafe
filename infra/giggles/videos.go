package giggles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/CrestNiraj12/giggles/domain"
)

// videoService implements app.VideoService against the giggles backend.
type videoService struct {
	client *Client
}

// NewVideoService creates a VideoService backed by the giggles API.
func NewVideoService(client *Client) *videoService {
	return &videoService{client: client}
}

func (s *videoService) ListVideos(ctx context.Context) ([]domain.Video, error) {
	data, err := s.client.Get(ctx, "/videos", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching videos: %w", err)
	}
	videos, err := decodeVideoList(data)
	if err != nil {
		return nil, fmt.Errorf("parsing videos: %w", err)
	}
	return videos, nil
}

func (s *videoService) Video(ctx context.Context, id string, commentsLimit int) (domain.Video, []domain.Comment, error) {
	query := url.Values{}
	if commentsLimit > 0 {
		query.Set("comments_limit", strconv.Itoa(commentsLimit))
	}
	data, err := s.client.Get(ctx, "/videos/"+url.PathEscape(id), query)
	if err != nil {
		return domain.Video{}, nil, fmt.Errorf("fetching video %s: %w", id, err)
	}

	// The video may be nested under "video" or flattened into the top level.
	var envelope struct {
		Video    json.RawMessage `json:"video"`
		Comments []apiComment    `json:"comments"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.Video{}, nil, fmt.Errorf("parsing video %s: %w: %v", id, domain.ErrMalformedResponse, err)
	}
	body := data
	if raw := bytes.TrimSpace(envelope.Video); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		body = raw
	}
	var v apiVideo
	if err := json.Unmarshal(body, &v); err != nil {
		return domain.Video{}, nil, fmt.Errorf("parsing video %s: %w: %v", id, domain.ErrMalformedResponse, err)
	}
	video := v.toDomain()
	if video.ID == "" {
		video.ID = id
	}
	if video.MediaURL == "" {
		return domain.Video{}, nil, fmt.Errorf("video %s: %w: missing url", id, domain.ErrMalformedResponse)
	}

	comments := make([]domain.Comment, 0, len(envelope.Comments))
	for _, c := range envelope.Comments {
		comments = append(comments, c.toDomain())
	}
	return video, comments, nil
}

func (s *videoService) VideosByUser(ctx context.Context, userID string) ([]domain.Video, error) {
	data, err := s.client.Get(ctx, "/users/"+url.PathEscape(userID)+"/videos", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching videos of %s: %w", userID, err)
	}
	videos, err := decodeVideoList(data)
	if err != nil {
		return nil, fmt.Errorf("parsing videos of %s: %w", userID, err)
	}
	return videos, nil
}
