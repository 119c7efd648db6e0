package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"golang.org/x/time/rate"
)

const oauthBaseURL = "https://oauth.reddit.com"

// APIClient reads listings through the authenticated API. The HTTP
// client it is given carries the user's OAuth token.
type APIClient struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

func NewAPIClient(httpClient *http.Client, userAgent string) (*APIClient, error) {
	client, err := reddit.NewReadonlyClient(
		reddit.WithHTTPClient(httpClient),
		reddit.WithBaseURL(oauthBaseURL),
		reddit.WithUserAgent(userAgent),
	)
	if err != nil {
		return nil, err
	}

	// API Rate Limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter}, nil
}

func (ac *APIClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Submission, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path, err := newPostsPath(sub, "", limit)
	if err != nil {
		return nil, err
	}
	req, err := ac.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if _, err := ac.client.Do(ctx, req, &listing); err != nil {
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}
	return listing.submissions(), nil
}
