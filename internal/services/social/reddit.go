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

// Reddit fetches recent posts through the OAuth search API. Without
// credentials it degrades to an empty result.
type Reddit struct {
	clientID     string
	clientSecret string
	userAgent    string
	baseURL      string
	limit        int
	client       *pkghttp.Client
}

// NewReddit creates a Reddit source.
func NewReddit(clientID, clientSecret, userAgent, baseURL string, limit int, client *pkghttp.Client) *Reddit {
	if baseURL == "" {
		baseURL = "https://oauth.reddit.com"
	}
	if userAgent == "" {
		userAgent = "crypto-sentiment/1.0"
	}
	if limit <= 0 {
		limit = 50
	}
	if client == nil {
		client = pkghttp.NewClient()
	}
	return &Reddit{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		baseURL:      strings.TrimRight(baseURL, "/"),
		limit:        limit,
		client:       client,
	}
}

type redditToken struct {
	AccessToken string `json:"access_token"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchPosts searches r/CryptoCurrency for posts matching any keyword.
func (r *Reddit) FetchPosts(ctx context.Context, keywords []string, limit int) ([]models.Post, error) {
	if r.clientID == "" || r.clientSecret == "" || len(keywords) == 0 {
		return []models.Post{}, nil
	}
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}

	token, err := r.authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}

	var listing redditListing
	err = r.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    r.baseURL + "/r/CryptoCurrency/search",
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"User-Agent":    r.userAgent,
		},
		QueryParams: map[string][]string{
			"q":              {strings.Join(keywords, " OR ")},
			"limit":          {strconv.Itoa(limit)},
			"sort":           {"new"},
			"restrict_sr":    {"true"},
			"include_facets": {"false"},
		},
	}, &listing)
	if err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}

	posts := make([]models.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		text := child.Data.Title
		if child.Data.SelfText != "" {
			text += " " + child.Data.SelfText
		}
		posts = append(posts, models.Post{Text: text, CreatedAt: child.Data.CreatedUTC})
	}
	return posts, nil
}

func (r *Reddit) authenticate(ctx context.Context) (string, error) {
	authURL := "https://www.reddit.com/api/v1/access_token"
	var token redditToken
	err := r.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    authURL,
		Headers: map[string]string{
			"Content-Type":  "application/x-www-form-urlencoded",
			"User-Agent":    r.userAgent,
			"Authorization": "Basic " + basicAuth(r.clientID, r.clientSecret),
		},
		Body: map[string]string{"grant_type": "client_credentials"},
	}, &token)
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return token.AccessToken, nil
}

var _ domservice.SocialSource = (*Reddit)(nil)
