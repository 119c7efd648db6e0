package collector

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

// Authorizer produces an HTTP client carrying a user token, typically by
// running the OAuth handshake.
type Authorizer interface {
	Client(ctx context.Context) (*http.Client, error)
}

// NewCollector selects the correct implementation based on the MODE.
// Only "api" mode (the default) runs the authorizer.
func NewCollector(ctx context.Context, auth Authorizer) (domain.Collector, error) {
	mode := os.Getenv("COLLECTOR_MODE")
	userAgent := os.Getenv("USER_AGENT")

	switch mode {
	case "", "api":
		if userAgent == "" {
			return nil, fmt.Errorf("USER_AGENT is required for api mode")
		}
		httpClient, err := auth.Client(ctx)
		if err != nil {
			return nil, err
		}
		return NewAPIClient(httpClient, userAgent)
	case "public":
		if userAgent == "" {
			return nil, fmt.Errorf("USER_AGENT is required for public mode")
		}
		return NewPublicClient(userAgent)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown COLLECTOR_MODE: %s (use 'api', 'public', or 'mock')", mode)
	}
}
