package social

import (
	"context"
	"encoding/base64"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domservice "github.com/katheedev/crypto-sentiment/internal/domain/service"
)

// Multi fans a fetch out over several sources and concatenates the results.
// A failing source contributes nothing rather than failing the whole fetch.
type Multi struct {
	sources []domservice.SocialSource
}

// NewMulti combines sources into one.
func NewMulti(sources ...domservice.SocialSource) *Multi {
	return &Multi{sources: sources}
}

func (m *Multi) FetchPosts(ctx context.Context, keywords []string, limit int) ([]models.Post, error) {
	out := make([]models.Post, 0, limit)
	for _, src := range m.sources {
		posts, err := src.FetchPosts(ctx, keywords, limit)
		if err != nil {
			continue
		}
		out = append(out, posts...)
	}
	return out, nil
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

var _ domservice.SocialSource = (*Multi)(nil)
