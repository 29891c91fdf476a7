package routing

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// OSRMProvider implements RouteProvider using an OSRM-compatible
// /route/v1 endpoint.
//
// One request covers the whole ordered waypoint list. Transient failures are
// retried with backoff while respecting context cancellation.
//
// The provider is safe for concurrent use.
type OSRMProvider struct {
	session     *http.Client
	baseURL     string
	profile     string
	maxAttempts int
	backoff     time.Duration
}

type OSRMOption func(*OSRMProvider)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OSRMOption {
	return func(o *OSRMProvider) { o.session = c }
}

// WithRetry sets the attempt limit and initial backoff for transient failures.
func WithRetry(maxAttempts int, backoff time.Duration) OSRMOption {
	return func(o *OSRMProvider) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		o.backoff = backoff
	}
}

func NewOSRMProvider(baseURL, profile string, opts ...OSRMOption) (*OSRMProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("OSRM base url is empty")
	}
	if strings.TrimSpace(profile) == "" {
		profile = "driving"
	}

	provider := &OSRMProvider{
		session:     &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		profile:     profile,
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}
