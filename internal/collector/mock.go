package collector

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

var mockTitles = []string{
	"Urgent: prod cluster is down",
	"Weekly discussion thread",
	"How do I read this stack trace?",
	"Release notes for the new version",
	"Help needed with OAuth redirect",
}

// MockClient implements domain.Collector but returns fake data. Every
// call yields a few posts newer than the previous call's.
type MockClient struct {
	mu      sync.Mutex
	next    int
	latency time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{latency: 500 * time.Millisecond}
}

func (mc *MockClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Submission, error) {
	// Simulate network latency
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(mc.latency):
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	n := min(1+rand.Intn(3), max(limit, 1))
	posts := make([]domain.Submission, 0, n)
	for i := 0; i < n; i++ {
		id := mc.next + n - 1 - i // newest first
		posts = append(posts, domain.Submission{
			ID:              fmt.Sprintf("mock_%s_%d", sub, id),
			Title:           mockTitles[id%len(mockTitles)],
			Body:            fmt.Sprintf("Simulated post #%d, details at https://example.com/%d", id, id),
			Subreddit:       "r/" + sub,
			Author:          "simulated_user",
			AuthorFlairText: fmt.Sprintf("Helper (+%d/100)", rand.Intn(120)),
			URL:             fmt.Sprintf("https://www.reddit.com/r/%s/comments/mock_%d", sub, id),
			Score:           rand.Intn(500),
			CommentCount:    rand.Intn(50),
			CreatedUTC:      time.Now().UTC(),
		})
	}
	mc.next += n
	return posts, nil
}
