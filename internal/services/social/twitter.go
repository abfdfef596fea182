package social

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domservice "github.com/katheedev/crypto-sentiment/internal/domain/service"
	pkghttp "github.com/katheedev/crypto-sentiment/pkg/http"
)

// Twitter fetches recent tweets through the v2 search API. Without a bearer
// token it degrades to an empty result so the pipeline still runs on market
// data alone.
type Twitter struct {
	bearerToken string
	baseURL     string
	maxResults  int
	client      *pkghttp.Client
}

// NewTwitter creates a Twitter source.
func NewTwitter(bearerToken, baseURL string, maxResults int, client *pkghttp.Client) *Twitter {
	if baseURL == "" {
		baseURL = "https://api.twitter.com"
	}
	if maxResults <= 0 {
		maxResults = 50
	}
	if client == nil {
		client = pkghttp.NewClient()
	}
	return &Twitter{
		bearerToken: bearerToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxResults:  maxResults,
		client:      client,
	}
}

type tweetSearchResponse struct {
	Data []struct {
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
}

// FetchPosts returns recent tweets matching any of the keywords.
func (t *Twitter) FetchPosts(ctx context.Context, keywords []string, limit int) ([]models.Post, error) {
	if t.bearerToken == "" || len(keywords) == 0 {
		return []models.Post{}, nil
	}
	if limit <= 0 || limit > t.maxResults {
		limit = t.maxResults
	}

	query := strings.Join(keywords, " OR ") + " -is:retweet lang:en"
	var resp tweetSearchResponse
	err := t.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    t.baseURL + "/2/tweets/search/recent",
		Headers: map[string]string{
			"Authorization": "Bearer " + t.bearerToken,
		},
		QueryParams: map[string][]string{
			"query":        {query},
			"max_results":  {strconv.Itoa(limit)},
			"tweet.fields": {"created_at"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}

	posts := make([]models.Post, 0, len(resp.Data))
	for _, d := range resp.Data {
		posts = append(posts, models.Post{Text: d.Text, CreatedAt: d.CreatedAt})
	}
	return posts, nil
}

var _ domservice.SocialSource = (*Twitter)(nil)
