package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shastra/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client talks to a Weaviate instance over its REST and GraphQL APIs.
// One Client serves one class.
type Client struct {
	baseURL string
	class   string
	client  *http.Client
}

func NewClient(baseURL, class string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		class:   class,
		client:  &http.Client{Timeout: timeout},
	}
}

// Class returns the class this client reads and writes.
func (c *Client) Class() string {
	return c.class
}

// Ready checks that the service answers on its meta endpoint.
func (c *Client) Ready(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, "/v1/meta", nil)
	if err != nil {
		return fmt.Errorf("%w: meta request: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: meta returned status %d: %s", domain.ErrIndex, status, preview(body))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
