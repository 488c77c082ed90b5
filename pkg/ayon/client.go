// Package ayon talks to the AYON tracking service. Only the narrow
// read-only calls the farm submission needs are implemented here.
package ayon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Version is a published product version entity.
type Version struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// Client is a minimal AYON REST client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given server. The API key is sent
// as the x-api-key header on every request.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetLastVersionByProductName returns the latest version of the product
// under the given folder, or nil when the product has no versions yet.
func (c *Client) GetLastVersionByProductName(
	ctx context.Context, projectName, productName, folderID string,
) (*Version, error) {
	endpoint := fmt.Sprintf(
		"%s/api/projects/%s/products/%s/versions/latest?folderId=%s",
		c.baseURL,
		url.PathEscape(projectName),
		url.PathEscape(productName),
		url.QueryEscape(folderID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query last version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("last version query failed with status %d: %s", resp.StatusCode, string(body))
	}

	var version Version
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return nil, fmt.Errorf("failed to decode version: %w", err)
	}
	return &version, nil
}
