package upstream

import (
	"context"
	"encoding/json"
	"net/url"
)

// InsidersClient fetches the raw wallet-relationship payload for a mint.
// The payload shape varies and is left to the caller to interpret.
type InsidersClient struct {
	*Client
}

// NewInsidersClient creates an insiders API client.
func NewInsidersClient(baseURL string, opts ...Option) *InsidersClient {
	if baseURL == "" {
		baseURL = DefaultInsidersURL
	}
	return &InsidersClient{Client: NewClient(ServiceInsiders, baseURL, InsidersTimeout, opts...)}
}

// Fetch returns the raw JSON payload for mint.
func (c *InsidersClient) Fetch(ctx context.Context, mint string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "insiders", "/"+url.PathEscape(mint), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
