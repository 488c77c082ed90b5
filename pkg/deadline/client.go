// Package deadline is a client for the Deadline render-farm
// webservice.
package deadline

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
)

// submitTimeout bounds every webservice call. Submission is a single
// point-in-time operation with no retry; a slow farm surfaces as a hard
// failure.
const submitTimeout = 10 * time.Second

// Auth is the webservice basic-auth credential pair.
type Auth struct {
	Username string
	Password string
}

// Client manages communication with one Deadline webservice.
type Client struct {
	webserviceURL string
	auth          *Auth
	httpClient    *http.Client
}

// NewClient creates a client for the given webservice URL. When verify
// is false the TLS certificate of the webservice is not checked.
func NewClient(webserviceURL string, auth *Auth, verify bool) *Client {
	httpClient := &http.Client{
		Timeout: submitTimeout,
	}
	if !verify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		webserviceURL: webserviceURL,
		auth:          auth,
		httpClient:    httpClient,
	}
}

// URL returns the configured webservice URL.
func (c *Client) URL() string {
	return c.webserviceURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.webserviceURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.auth != nil && c.auth.Username != "" {
		req.SetBasicAuth(c.auth.Username, c.auth.Password)
	}
	return req, nil
}

// SubmitJob posts a job payload and returns the farm-assigned job id.
// Any non-2xx response is an error carrying the response body text.
func (c *Client) SubmitJob(ctx context.Context, payload *models.JobPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/jobs", bytes.NewBuffer(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit job: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submission response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("job submission failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode submission response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("submission response carries no job id: %s", string(body))
	}
	return result.ID, nil
}

// Pools returns the pool names configured on the farm.
func (c *Client) Pools(ctx context.Context) ([]string, error) {
	return c.getNames(ctx, "/api/pools")
}

// Groups returns the group names configured on the farm.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	return c.getNames(ctx, "/api/groups")
}

// LimitGroups returns the limit group names configured on the farm.
func (c *Client) LimitGroups(ctx context.Context) ([]string, error) {
	return c.getNames(ctx, "/api/limitgroups?NamesOnly=true")
}

// Workers returns the worker names registered on the farm.
func (c *Client) Workers(ctx context.Context) ([]string, error) {
	return c.getNames(ctx, "/api/slaves?NamesOnly=true")
}

func (c *Client) getNames(ctx context.Context, path string) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("query %s failed with status %d: %s", path, resp.StatusCode, string(body))
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return names, nil
}
