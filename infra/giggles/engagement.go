package giggles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/domain"
)

// engagementService implements app.EngagementService for a fixed user.
type engagementService struct {
	client *Client
	userID string
}

// NewEngagementService creates an EngagementService acting as userID.
func NewEngagementService(client *Client, userID string) *engagementService {
	return &engagementService{client: client, userID: userID}
}

func (s *engagementService) Like(ctx context.Context, videoID string) (app.LikeResult, error) {
	data, err := s.client.Post(ctx, s.likePath(videoID), s.userQuery())
	if err != nil {
		return app.LikeResult{}, fmt.Errorf("liking video: %w", err)
	}
	return parseLikeResult(data)
}

func (s *engagementService) Unlike(ctx context.Context, videoID string) (app.LikeResult, error) {
	data, err := s.client.Delete(ctx, s.likePath(videoID), s.userQuery())
	if err != nil {
		return app.LikeResult{}, fmt.Errorf("unliking video: %w", err)
	}
	return parseLikeResult(data)
}

func (s *engagementService) LikedVideoIDs(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, "/users/"+url.PathEscape(s.userID)+"/likes", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching likes: %w", err)
	}
	var resp struct {
		VideoIDs []flexString `json:"video_ids"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing likes: %w: %v", domain.ErrMalformedResponse, err)
	}
	ids := make([]string, 0, len(resp.VideoIDs))
	for _, id := range resp.VideoIDs {
		if id != "" {
			ids = append(ids, string(id))
		}
	}
	return ids, nil
}

func (s *engagementService) PostComment(ctx context.Context, videoID, text string) (app.CommentResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return app.CommentResult{}, domain.ErrEmptyComment
	}
	query := s.userQuery()
	query.Set("text", text)

	data, err := s.client.Post(ctx, "/videos/"+url.PathEscape(videoID)+"/comments", query)
	if err != nil {
		return app.CommentResult{}, fmt.Errorf("posting comment: %w", err)
	}
	var resp struct {
		Comment      *apiComment `json:"comment"`
		CommentCount flexInt     `json:"comment_count"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return app.CommentResult{}, fmt.Errorf("parsing comment response: %w: %v", domain.ErrMalformedResponse, err)
	}
	if resp.Comment == nil {
		return app.CommentResult{}, fmt.Errorf("parsing comment response: %w: missing comment", domain.ErrMalformedResponse)
	}
	comment := resp.Comment.toDomain()
	if comment.Text == "" {
		comment.Text = text
	}
	if comment.AuthorID == "" {
		comment.AuthorID = s.userID
	}
	return app.CommentResult{
		Comment:      comment,
		CommentCount: resp.CommentCount.Value,
		HasCount:     resp.CommentCount.Set,
	}, nil
}

func (s *engagementService) likePath(videoID string) string {
	return "/videos/" + url.PathEscape(videoID) + "/like"
}

func (s *engagementService) userQuery() url.Values {
	q := url.Values{}
	q.Set("user_id", s.userID)
	return q
}

func parseLikeResult(data []byte) (app.LikeResult, error) {
	var resp struct {
		LikeCount flexInt `json:"like_count"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return app.LikeResult{}, fmt.Errorf("parsing like response: %w: %v", domain.ErrMalformedResponse, err)
	}
	return app.LikeResult{LikeCount: resp.LikeCount.Value, HasCount: resp.LikeCount.Set}, nil
}
