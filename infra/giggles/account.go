package giggles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/domain"
)

// accountService implements app.AccountService for a fixed user.
type accountService struct {
	client *Client
	userID string
}

// NewAccountService creates an AccountService acting as userID.
func NewAccountService(client *Client, userID string) *accountService {
	return &accountService{client: client, userID: userID}
}

func (s *accountService) CurrentUserID() string {
	return s.userID
}

func (s *accountService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	data, err := s.client.Get(ctx, "/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}
	var resp struct {
		Username  string  `json:"username"`
		AvatarURL string  `json:"avatar_url"`
		Aura      flexInt `json:"aura"`
		Posts     flexInt `json:"posts"`
		Followers flexInt `json:"followers"`
		Following flexInt `json:"following"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.Profile{}, fmt.Errorf("parsing profile: %w: %v", domain.ErrMalformedResponse, err)
	}
	return domain.Profile{
		ID:        userID,
		Username:  resp.Username,
		AvatarURL: resp.AvatarURL,
		Aura:      resp.Aura.Value,
		Posts:     resp.Posts.Value,
		Followers: resp.Followers.Value,
		Following: resp.Following.Value,
	}, nil
}

func (s *accountService) Follow(ctx context.Context, userID string) (app.FollowResult, error) {
	data, err := s.client.Post(ctx, s.followPath(userID), s.followerQuery())
	if err != nil {
		return app.FollowResult{}, fmt.Errorf("following user: %w", err)
	}
	return parseFollowResult(data)
}

func (s *accountService) Unfollow(ctx context.Context, userID string) (app.FollowResult, error) {
	data, err := s.client.Delete(ctx, s.followPath(userID), s.followerQuery())
	if err != nil {
		return app.FollowResult{}, fmt.Errorf("unfollowing user: %w", err)
	}
	return parseFollowResult(data)
}

func (s *accountService) followPath(userID string) string {
	return "/users/" + url.PathEscape(userID) + "/follow"
}

func (s *accountService) followerQuery() url.Values {
	q := url.Values{}
	q.Set("follower_id", s.userID)
	return q
}

func parseFollowResult(data []byte) (app.FollowResult, error) {
	var resp struct {
		Followers flexInt `json:"followers"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return app.FollowResult{}, fmt.Errorf("parsing follow response: %w: %v", domain.ErrMalformedResponse, err)
	}
	return app.FollowResult{Followers: resp.Followers.Value, HasCount: resp.Followers.Set}, nil
}
