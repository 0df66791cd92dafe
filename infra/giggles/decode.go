package giggles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CrestNiraj12/giggles/domain"
)

// flexString accepts JSON strings and numbers; backends disagree on id types.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts numbers and numeric strings and remembers whether a value was present.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexInt{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*f = flexInt{Value: n, Set: true}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt{Value: int(n), Set: true}
	return nil
}

// apiUserRef is the joined "users" relation, an object or a one-element array.
type apiUserRef struct {
	Username string
}

func (u *apiUserRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	type plain struct {
		Username string `json:"username"`
	}
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '[':
		var list []plain
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			u.Username = list[0].Username
		}
		return nil
	default:
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		u.Username = p.Username
		return nil
	}
}

type apiVideo struct {
	ID           flexString `json:"id"`
	URL          string     `json:"url"`
	UserID       flexString `json:"user_id"`
	Users        apiUserRef `json:"users"`
	Caption      string     `json:"caption"`
	LikeCount    flexInt    `json:"like_count"`
	CommentCount flexInt    `json:"comment_count"`
}

func (v apiVideo) toDomain() domain.Video {
	return domain.Video{
		ID:           strings.TrimSpace(string(v.ID)),
		MediaURL:     strings.TrimSpace(v.URL),
		AuthorID:     string(v.UserID),
		AuthorName:   v.Users.Username,
		Caption:      v.Caption,
		LikeCount:    max(v.LikeCount.Value, 0),
		CommentCount: max(v.CommentCount.Value, 0),
	}
}

type apiComment struct {
	ID        flexString `json:"id"`
	UserID    flexString `json:"user_id"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"created_at"`
	Username  string     `json:"username"`
	Users     apiUserRef `json:"users"`
}

func (c apiComment) toDomain() domain.Comment {
	name := c.Username
	if name == "" {
		name = c.Users.Username
	}
	return domain.Comment{
		ID:          string(c.ID),
		AuthorID:    string(c.UserID),
		Text:        c.Text,
		CreatedAt:   parseTime(c.CreatedAt),
		DisplayName: name,
	}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeVideoList accepts {"videos": [...]} or a bare array.
func decodeVideoList(data []byte) ([]domain.Video, error) {
	data = bytes.TrimSpace(data)
	var raw []apiVideo
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
	} else {
		var envelope struct {
			Videos []apiVideo `json:"videos"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		raw = envelope.Videos
	}

	out := make([]domain.Video, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		d := v.toDomain()
		if d.ID == "" || d.MediaURL == "" {
			continue
		}
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}
