// Package engagement owns the per-video and per-author reaction state and
// drives every change to it through optimistic mutations.
package engagement

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/CrestNiraj12/giggles/app"
	"github.com/CrestNiraj12/giggles/core/mutation"
	"github.com/CrestNiraj12/giggles/domain"
)

// ItemState is the reaction state of one video.
type ItemState struct {
	Liked        bool
	LikeCount    int
	Bookmarked   bool
	CommentCount int
}

// AuthorState is the relationship of the current user to an author.
// FollowersKnown is false until a count has been seen.
type AuthorState struct {
	Following      bool
	Followers      int
	FollowersKnown bool
}

// LikesHydratedMsg carries the authoritative set of liked video ids. Seq
// is the like sequence at the time the request was issued.
type LikesHydratedMsg struct {
	Seq uint64
	IDs []string
	Err error
}

// ThreadLoadedMsg carries a freshly fetched comment thread.
type ThreadLoadedMsg struct {
	VideoID  string
	Comments []domain.Comment
	Err      error
}

// Coordinator is the only writer of engagement state. All methods must be
// called from the event loop.
type Coordinator struct {
	videos     app.VideoService
	engagement app.EngagementService
	accounts   app.AccountService
	logger     *slog.Logger

	commentsLimit int

	items   map[string]ItemState
	authors map[string]AuthorState
	threads map[string][]domain.Comment
	sending map[string]bool

	// likeSeq numbers like mutations; likedAt holds the latest one per
	// video and likesPending counts the unresolved ones.
	likeSeq      uint64
	likedAt      map[string]uint64
	likesPending map[string]int
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithCommentsLimit bounds the number of comments fetched per thread.
func WithCommentsLimit(n int) Option {
	return func(c *Coordinator) { c.commentsLimit = n }
}

// New creates a Coordinator.
func New(videos app.VideoService, engagement app.EngagementService, accounts app.AccountService, opts ...Option) *Coordinator {
	c := &Coordinator{
		videos:        videos,
		engagement:    engagement,
		accounts:      accounts,
		logger:        slog.Default(),
		commentsLimit: 50,
		items:         make(map[string]ItemState),
		authors:       make(map[string]AuthorState),
		threads:       make(map[string][]domain.Comment),
		sending:       make(map[string]bool),
		likedAt:       make(map[string]uint64),
		likesPending:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Track seeds counts for loaded videos. Existing toggle state survives a
// reload; counts are refreshed from the backend unless a like or send for
// that video is pending.
func (c *Coordinator) Track(videos []domain.Video) {
	for _, v := range videos {
		st, ok := c.items[v.ID]
		if !ok || c.likesPending[v.ID] == 0 {
			st.LikeCount = v.LikeCount
		}
		if !ok || !c.sending[v.ID] {
			st.CommentCount = v.CommentCount
		}
		c.items[v.ID] = st
	}
}

// Item returns the reaction state of a video.
func (c *Coordinator) Item(id string) ItemState {
	return c.items[id]
}

// Author returns the relationship state for an author.
func (c *Coordinator) Author(id string) AuthorState {
	return c.authors[id]
}

// SeedFollowers records a follower count seen outside a mutation,
// e.g. on a profile screen.
func (c *Coordinator) SeedFollowers(authorID string, followers int) {
	st := c.authors[authorID]
	st.Followers = followers
	st.FollowersKnown = true
	c.authors[authorID] = st
}

// Thread returns the cached comment thread of a video.
func (c *Coordinator) Thread(id string) []domain.Comment {
	return c.threads[id]
}

// Sending reports whether a comment post for id is in flight.
func (c *Coordinator) Sending(id string) bool {
	return c.sending[id]
}

// LikeKey, FollowKey, BookmarkKey and CommentKey name mutations in
// mutation.SettledMsg.
func LikeKey(videoID string) string     { return "like:" + videoID }
func FollowKey(authorID string) string  { return "follow:" + authorID }
func BookmarkKey(videoID string) string { return "bookmark:" + videoID }
func CommentKey(videoID string) string  { return "comment:" + videoID }

// ToggleLike flips the like on a video.
func (c *Coordinator) ToggleLike(videoID string) tea.Cmd {
	if videoID == "" {
		return nil
	}
	liking := !c.items[videoID].Liked
	return mutation.Mutation[app.LikeResult]{
		Key:    LikeKey(videoID),
		Logger: c.logger,
		Apply: func() func() {
			c.likeSeq++
			c.likedAt[videoID] = c.likeSeq
			c.likesPending[videoID]++
			prev := c.items[videoID]
			st := prev
			st.Liked = liking
			if liking {
				st.LikeCount++
			} else {
				st.LikeCount = max(st.LikeCount-1, 0)
			}
			c.items[videoID] = st
			return func() {
				c.likeSettled(videoID)
				st := c.items[videoID]
				st.Liked, st.LikeCount = prev.Liked, prev.LikeCount
				c.items[videoID] = st
			}
		},
		Call: func(ctx context.Context) (app.LikeResult, error) {
			if liking {
				return c.engagement.Like(ctx, videoID)
			}
			return c.engagement.Unlike(ctx, videoID)
		},
		Reconcile: func(res app.LikeResult) {
			c.likeSettled(videoID)
			st := c.items[videoID]
			st.Liked = liking
			if res.HasCount {
				st.LikeCount = max(res.LikeCount, 0)
			}
			c.items[videoID] = st
		},
	}.Start()
}

func (c *Coordinator) likeSettled(videoID string) {
	if c.likesPending[videoID]--; c.likesPending[videoID] <= 0 {
		delete(c.likesPending, videoID)
	}
}

// ToggleBookmark flips the local-only bookmark of a video.
func (c *Coordinator) ToggleBookmark(videoID string) tea.Cmd {
	if videoID == "" {
		return nil
	}
	return mutation.Mutation[struct{}]{
		Key:    BookmarkKey(videoID),
		Logger: c.logger,
		Apply: func() func() {
			st := c.items[videoID]
			prev := st.Bookmarked
			st.Bookmarked = !prev
			c.items[videoID] = st
			return func() {
				st := c.items[videoID]
				st.Bookmarked = prev
				c.items[videoID] = st
			}
		},
	}.Start()
}

// IsSelf reports whether userID is the current user.
func (c *Coordinator) IsSelf(userID string) bool {
	return c.accounts != nil && userID == c.accounts.CurrentUserID()
}

// ToggleFollow flips following of an author. Following yourself is a no-op.
func (c *Coordinator) ToggleFollow(authorID string) tea.Cmd {
	if authorID == "" || c.IsSelf(authorID) {
		return nil
	}
	following := !c.authors[authorID].Following
	return mutation.Mutation[app.FollowResult]{
		Key:    FollowKey(authorID),
		Logger: c.logger,
		Apply: func() func() {
			prev := c.authors[authorID]
			st := prev
			st.Following = following
			if st.FollowersKnown {
				if following {
					st.Followers++
				} else {
					st.Followers = max(st.Followers-1, 0)
				}
			}
			c.authors[authorID] = st
			return func() { c.authors[authorID] = prev }
		},
		Call: func(ctx context.Context) (app.FollowResult, error) {
			if following {
				return c.accounts.Follow(ctx, authorID)
			}
			return c.accounts.Unfollow(ctx, authorID)
		},
		Reconcile: func(res app.FollowResult) {
			st := c.authors[authorID]
			st.Following = following
			if res.HasCount {
				st.Followers = max(res.Followers, 0)
				st.FollowersKnown = true
			}
			c.authors[authorID] = st
		},
	}.Start()
}

// PostComment sends a comment. It returns nil when the text is blank or a
// send for the same video is already in flight.
func (c *Coordinator) PostComment(videoID, text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if videoID == "" || text == "" || c.sending[videoID] {
		return nil
	}
	return mutation.Mutation[app.CommentResult]{
		Key:    CommentKey(videoID),
		Logger: c.logger,
		Apply: func() func() {
			c.sending[videoID] = true
			return func() { delete(c.sending, videoID) }
		},
		Call: func(ctx context.Context) (app.CommentResult, error) {
			return c.engagement.PostComment(ctx, videoID, text)
		},
		Reconcile: func(res app.CommentResult) {
			delete(c.sending, videoID)
			comment := res.Comment
			if comment.ID == "" {
				comment.ID = "local-" + uuid.NewString()
			}
			if comment.CreatedAt.IsZero() {
				comment.CreatedAt = time.Now()
			}
			c.threads[videoID] = append(c.threads[videoID], comment)

			st := c.items[videoID]
			if res.HasCount {
				st.CommentCount = max(res.CommentCount, 0)
			} else {
				st.CommentCount++
			}
			c.items[videoID] = st
		},
	}.Start()
}

// HydrateLikes fetches the ids the current user has liked. Videos liked or
// unliked after this call keep their local state when the result arrives.
func (c *Coordinator) HydrateLikes() tea.Cmd {
	svc, seq := c.engagement, c.likeSeq
	return func() tea.Msg {
		ids, err := svc.LikedVideoIDs(context.Background())
		return LikesHydratedMsg{Seq: seq, IDs: ids, Err: err}
	}
}

// likeChangedSince reports whether videoID has a like mutation newer than
// seq or one still in flight.
func (c *Coordinator) likeChangedSince(videoID string, seq uint64) bool {
	return c.likedAt[videoID] > seq || c.likesPending[videoID] > 0
}

// LoadThread fetches the comment thread of a video.
func (c *Coordinator) LoadThread(videoID string) tea.Cmd {
	svc, limit := c.videos, c.commentsLimit
	return func() tea.Msg {
		_, comments, err := svc.Video(context.Background(), videoID, limit)
		return ThreadLoadedMsg{VideoID: videoID, Comments: comments, Err: err}
	}
}

// Update applies messages owned by the coordinator and reports whether msg
// was consumed.
func (c *Coordinator) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case mutation.SettledMsg:
		msg.Finish()
		return true

	case LikesHydratedMsg:
		if msg.Err != nil {
			c.logger.Warn("engagement: liked ids unavailable", "err", msg.Err)
			return true
		}
		liked := make(map[string]struct{}, len(msg.IDs))
		for _, id := range msg.IDs {
			liked[id] = struct{}{}
		}
		for id, st := range c.items {
			if c.likeChangedSince(id, msg.Seq) {
				continue
			}
			_, st.Liked = liked[id]
			c.items[id] = st
		}
		for id := range liked {
			if _, ok := c.items[id]; !ok && !c.likeChangedSince(id, msg.Seq) {
				c.items[id] = ItemState{Liked: true}
			}
		}
		return true

	case ThreadLoadedMsg:
		if msg.Err != nil {
			c.logger.Warn("engagement: thread load failed", "video", msg.VideoID, "err", msg.Err)
			return true
		}
		comments := msg.Comments
		if comments == nil {
			comments = []domain.Comment{}
		}
		c.threads[msg.VideoID] = comments
		return true
	}
	return false
}
