package attack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EnterpriseBundleURL is the version-agnostic STIX 2.1 feed for the
// ATT&CK Enterprise matrix, published by MITRE.
const EnterpriseBundleURL = "https://raw.githubusercontent.com/mitre-attack/attack-stix-data/master/enterprise-attack/enterprise-attack.json"

// maxBundleSize caps the feed download; the enterprise bundle is ~40MB.
const maxBundleSize = 256 << 20

// Source provides the technique corpus for a ranking request.
type Source interface {
	// Techniques returns the full technique corpus.
	Techniques(ctx context.Context) ([]Technique, error)
}

// ClientOptions configures the feed client
type ClientOptions struct {
	BundleURL string
	Timeout   time.Duration
	UserAgent string
}

// ClientOption is a function type for configuring Client
type ClientOption func(*ClientOptions)

// WithBundleURL overrides the STIX feed URL
func WithBundleURL(url string) ClientOption {
	return func(opts *ClientOptions) {
		opts.BundleURL = url
	}
}

// WithTimeout sets the HTTP request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = timeout
	}
}

// Client fetches the technique corpus from the ATT&CK STIX feed.
// It is safe for concurrent use.
type Client struct {
	options ClientOptions
	client  *http.Client
}

// NewClient creates a feed client for the ATT&CK enterprise bundle
func NewClient(options ...ClientOption) *Client {
	opts := ClientOptions{
		BundleURL: EnterpriseBundleURL,
		Timeout:   2 * time.Minute,
		UserAgent: "attackmap",
	}

	for _, option := range options {
		option(&opts)
	}

	return &Client{
		options: opts,
		client:  &http.Client{Timeout: opts.Timeout},
	}
}

// Techniques downloads and parses the STIX bundle.
func (c *Client) Techniques(ctx context.Context) ([]Technique, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.options.BundleURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", c.options.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("technique feed request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("technique feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBundleSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read technique feed: %w", err)
	}

	techniques, err := ParseBundle(data)
	if err != nil {
		return nil, err
	}

	if len(techniques) == 0 {
		return nil, fmt.Errorf("technique feed contained no usable techniques")
	}

	return techniques, nil
}
