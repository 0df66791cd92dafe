package domain

import "time"

// Video is a single entry of the vertical feed.
type Video struct {
	ID           string
	MediaURL     string
	AuthorID     string
	AuthorName   string // Display name, may be empty
	Caption      string
	LikeCount    int
	CommentCount int
}

// Author returns the best available label for the video's author.
func (v Video) Author() string {
	if v.AuthorName != "" {
		return v.AuthorName
	}
	return v.AuthorID
}

// Comment is one entry of a video's comment thread.
type Comment struct {
	ID          string
	AuthorID    string
	Text        string
	CreatedAt   time.Time
	DisplayName string
}

// Profile holds the public stats of a user.
type Profile struct {
	ID        string
	Username  string
	AvatarURL string
	Aura      int
	Posts     int
	Followers int
	Following int
}
