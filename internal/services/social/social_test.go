package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

func TestTwitterWithoutTokenReturnsEmpty(t *testing.T) {
	tw := NewTwitter("", "", 50, nil)
	posts, err := tw.FetchPosts(context.Background(), []string{"BTCUSDT"}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected empty posts, got %d", len(posts))
	}
}

func TestTwitterFetchPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{
				{"text": "BTC to the moon", "created_at": "2024-01-01T00:00:00Z"},
				{"text": "selling everything", "created_at": "2024-01-01T00:05:00Z"},
			},
		})
	}))
	defer srv.Close()

	tw := NewTwitter("tok", srv.URL, 50, nil)
	posts, err := tw.FetchPosts(context.Background(), []string{"BTCUSDT", "BTC"}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Text != "BTC to the moon" {
		t.Fatalf("unexpected text: %s", posts[0].Text)
	}
	if _, ok := posts[0].CreatedAt.(string); !ok {
		t.Fatalf("expected string timestamp, got %T", posts[0].CreatedAt)
	}
}

func TestRedditWithoutCredsReturnsEmpty(t *testing.T) {
	rd := NewReddit("", "", "", "", 50, nil)
	posts, err := rd.FetchPosts(context.Background(), []string{"BTC"}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected empty posts, got %d", len(posts))
	}
}

type staticSource struct {
	posts []models.Post
	err   error
}

func (s *staticSource) FetchPosts(context.Context, []string, int) ([]models.Post, error) {
	return s.posts, s.err
}

func TestMultiConcatenatesAndSkipsFailures(t *testing.T) {
	ok1 := &staticSource{posts: []models.Post{{Text: "a"}, {Text: "b"}}}
	bad := &staticSource{err: context.DeadlineExceeded}
	ok2 := &staticSource{posts: []models.Post{{Text: "c"}}}

	m := NewMulti(ok1, bad, ok2)
	posts, err := m.FetchPosts(context.Background(), []string{"x"}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
}
