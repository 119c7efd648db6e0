package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"golang.org/x/time/rate"
)

const publicBaseURL = "https://www.reddit.com"

// PublicClient reads the unauthenticated JSON listings. It needs no
// OAuth handshake.
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

func NewPublicClient(userAgent string) (*PublicClient, error) {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		baseURL:   publicBaseURL,
	}, nil
}

func (pc *PublicClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Submission, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path, err := newPostsPath(sub, ".json", limit)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(pc.baseURL, "/")+"/"+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}
	return listing.submissions(), nil
}
