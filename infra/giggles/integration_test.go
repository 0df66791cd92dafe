package giggles

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/CrestNiraj12/giggles/domain"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) { return string(s), nil }

type handlerRoundTripper struct {
	h http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := newResponseRecorder()
	rt.h.ServeHTTP(rec, req)
	return rec.response(req), nil
}

type responseRecorder struct {
	header http.Header
	body   strings.Builder
	code   int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header         { return r.header }
func (r *responseRecorder) Write(p []byte) (int, error) { return r.body.Write(p) }
func (r *responseRecorder) WriteHeader(statusCode int)  { r.code = statusCode }

func (r *responseRecorder) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: r.code,
		Header:     r.header.Clone(),
		Body:       io.NopCloser(strings.NewReader(r.body.String())),
		Request:    req,
	}
}

func newTestClient(h http.Handler) *Client {
	return NewClient("http://example.test/",
		WithTokenProvider(staticToken("tok")),
		WithHTTPClient(&http.Client{Transport: handlerRoundTripper{h: h}}),
	)
}

func TestVideoService_ListVideos_RequestShapeAndMapping(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/videos" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Fatalf("missing auth header: %q", auth)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-ID")); err != nil {
			t.Fatalf("request id must be a uuid: %v", err)
		}
		_, _ = io.WriteString(w, `{"videos":[
			{"id":"v1","url":"https://cdn/v1.mp4","user_id":"u1","users":{"username":"ana"},"caption":"hi","like_count":3,"comment_count":"2","extra":true},
			{"id":2,"url":"https://cdn/v2.mp4","user_id":"u2","users":[{"username":"bo"}],"like_count":null},
			{"id":"v1","url":"https://cdn/dup.mp4"},
			{"id":"","url":"https://cdn/none.mp4"},
			{"id":"v4","url":""}
		]}`)
	})

	videos, err := NewVideoService(newTestClient(h)).ListVideos(context.Background())
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 usable videos, got %d: %#v", len(videos), videos)
	}
	first := videos[0]
	if first.ID != "v1" || first.AuthorName != "ana" || first.LikeCount != 3 || first.CommentCount != 2 {
		t.Fatalf("unexpected mapping: %#v", first)
	}
	if videos[1].ID != "2" || videos[1].Author() != "bo" || videos[1].LikeCount != 0 {
		t.Fatalf("unexpected mapping: %#v", videos[1])
	}
}

func TestVideoService_ListVideos_AcceptsBareArrayAndEmpty(t *testing.T) {
	bodies := map[string]int{
		`[{"id":"a","url":"https://cdn/a.mp4"}]`: 1,
		`[]`:                                      0,
		`{}`:                                      0,
		`{"videos":null}`:                         0,
	}
	for body, want := range bodies {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		videos, err := NewVideoService(newTestClient(h)).ListVideos(context.Background())
		if err != nil {
			t.Fatalf("body %s: unexpected error: %v", body, err)
		}
		if len(videos) != want {
			t.Fatalf("body %s: expected %d videos, got %d", body, want, len(videos))
		}
	}
}

func TestVideoService_ListVideos_MalformedBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"videos":[{"id":`)
	})
	_, err := NewVideoService(newTestClient(h)).ListVideos(context.Background())
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestVideoService_Video_EnvelopeAndFlatShapes(t *testing.T) {
	bodies := []string{
		`{"video":{"id":"v9","url":"https://cdn/v9.mp4","user_id":"u1","comment_count":1},"comments":[{"id":"c1","user_id":"u2","text":"nice","created_at":"2024-05-01T10:00:00.123456","users":{"username":"cy"}}]}`,
		`{"id":"v9","url":"https://cdn/v9.mp4","user_id":"u1","comment_count":1,"comments":[{"id":"c1","user_id":"u2","text":"nice","created_at":"2024-05-01T10:00:00Z","username":"cy"}]}`,
	}
	for _, body := range bodies {
		var gotQuery url.Values
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/videos/v9" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			gotQuery = r.URL.Query()
			_, _ = io.WriteString(w, body)
		})
		video, comments, err := NewVideoService(newTestClient(h)).Video(context.Background(), "v9", 25)
		if err != nil {
			t.Fatalf("Video failed: %v", err)
		}
		if gotQuery.Get("comments_limit") != "25" {
			t.Fatalf("expected comments_limit=25, got %v", gotQuery)
		}
		if video.ID != "v9" || video.MediaURL != "https://cdn/v9.mp4" {
			t.Fatalf("unexpected video: %#v", video)
		}
		if len(comments) != 1 || comments[0].DisplayName != "cy" || comments[0].CreatedAt.IsZero() {
			t.Fatalf("unexpected comments: %#v", comments)
		}
	}
}

func TestVideoService_Video_NotFound(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Video not found"}`)
	})
	_, _, err := NewVideoService(newTestClient(h)).Video(context.Background(), "gone", 10)
	if !errors.Is(err, domain.ErrNotFound) || !errors.Is(err, domain.ErrUnexpectedStatus) {
		t.Fatalf("expected not found status error, got %v", err)
	}
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound || !strings.Contains(se.Body, "Video not found") {
		t.Fatalf("expected StatusError with body, got %#v", se)
	}
}

func TestVideoService_VideosByUser_EscapesPath(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/users/a%2Fb/videos" {
			t.Fatalf("expected escaped user path, got %s", r.URL.EscapedPath())
		}
		_, _ = io.WriteString(w, `{"videos":[{"id":"v1","url":"https://cdn/v1.mp4"}]}`)
	})
	videos, err := NewVideoService(newTestClient(h)).VideosByUser(context.Background(), "a/b")
	if err != nil || len(videos) != 1 {
		t.Fatalf("unexpected result: %v %#v", err, videos)
	}
}

func TestEngagementService_LikeUnlike_RequestShape(t *testing.T) {
	var methods []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/v1/like" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("user_id") != "me" {
			t.Fatalf("missing user_id: %v", r.URL.Query())
		}
		methods = append(methods, r.Method)
		if r.Method == http.MethodPost {
			_, _ = io.WriteString(w, `{"like_count":11}`)
			return
		}
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})
	svc := NewEngagementService(newTestClient(h), "me")

	liked, err := svc.Like(context.Background(), "v1")
	if err != nil || !liked.HasCount || liked.LikeCount != 11 {
		t.Fatalf("unexpected like result: %#v %v", liked, err)
	}
	unliked, err := svc.Unlike(context.Background(), "v1")
	if err != nil || unliked.HasCount {
		t.Fatalf("missing like_count must leave HasCount false: %#v %v", unliked, err)
	}
	if strings.Join(methods, ",") != "POST,DELETE" {
		t.Fatalf("unexpected methods: %v", methods)
	}
}

func TestEngagementService_LikedVideoIDs(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/likes" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"video_ids":["a",7,null,""]}`)
	})
	ids, err := NewEngagementService(newTestClient(h), "me").LikedVideoIDs(context.Background())
	if err != nil {
		t.Fatalf("LikedVideoIDs failed: %v", err)
	}
	if strings.Join(ids, ",") != "a,7" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestEngagementService_PostComment(t *testing.T) {
	var gotQuery url.Values
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/videos/v1/comments" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"comment":       map[string]any{"id": 42, "user_id": "me", "text": "so good", "created_at": "2024-05-01 10:00:00"},
			"comment_count": 4,
		})
	})
	res, err := NewEngagementService(newTestClient(h), "me").PostComment(context.Background(), "v1", "  so good ")
	if err != nil {
		t.Fatalf("PostComment failed: %v", err)
	}
	if gotQuery.Get("text") != "so good" || gotQuery.Get("user_id") != "me" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if res.Comment.ID != "42" || !res.HasCount || res.CommentCount != 4 {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestEngagementService_PostComment_RejectsBlankWithoutRequest(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("blank comment must not reach the backend")
	})
	_, err := NewEngagementService(newTestClient(h), "me").PostComment(context.Background(), "v1", " \n ")
	if !errors.Is(err, domain.ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
}

func TestEngagementService_PostComment_MissingComment(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"comment_count":4}`)
	})
	_, err := NewEngagementService(newTestClient(h), "me").PostComment(context.Background(), "v1", "x")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestAccountService_ProfileAndFollow(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/users/u2":
			_, _ = io.WriteString(w, `{"username":"bo","aura":"12","posts":3,"followers":8,"following":1,"bio":"ignored"}`)
		case r.URL.Path == "/users/u2/follow":
			if r.URL.Query().Get("follower_id") != "me" {
				t.Fatalf("missing follower_id: %v", r.URL.Query())
			}
			if r.Method == http.MethodPost {
				_, _ = io.WriteString(w, `{"followers":9}`)
				return
			}
			_, _ = io.WriteString(w, `{"followers":8}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	svc := NewAccountService(newTestClient(h), "me")
	if svc.CurrentUserID() != "me" {
		t.Fatalf("unexpected current user: %q", svc.CurrentUserID())
	}

	p, err := svc.Profile(context.Background(), "u2")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.ID != "u2" || p.Username != "bo" || p.Aura != 12 || p.Followers != 8 {
		t.Fatalf("unexpected profile: %#v", p)
	}

	f, err := svc.Follow(context.Background(), "u2")
	if err != nil || f.Followers != 9 || !f.HasCount {
		t.Fatalf("unexpected follow: %#v %v", f, err)
	}
	u, err := svc.Unfollow(context.Background(), "u2")
	if err != nil || u.Followers != 8 {
		t.Fatalf("unexpected unfollow: %#v %v", u, err)
	}
}

func TestClient_ServerErrorTrimsBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, strings.Repeat("x", 2000))
	})
	_, err := newTestClient(h).Get(context.Background(), "/videos", nil)
	var se *domain.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if len(se.Body) != maxErrorBody || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unexpected status error: code=%d len=%d", se.Code, len(se.Body))
	}
}

func TestClient_NoTokenOmitsAuthorization(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Fatalf("authorization header must be absent")
		}
		_, _ = io.WriteString(w, `[]`)
	})
	c := NewClient("http://example.test", WithHTTPClient(&http.Client{Transport: handlerRoundTripper{h: h}}))
	if _, err := c.Get(context.Background(), "/videos", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
