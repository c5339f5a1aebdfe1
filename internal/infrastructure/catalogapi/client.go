package catalogapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"artkit-backend/internal/domain"

	"github.com/goccy/go-json"
)

// Client fetches the art-tools catalog from the upstream REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Fetch(ctx context.Context) ([]domain.ArtTool, error) {
	url := c.baseURL + "/art-tools"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	var tools []domain.ArtTool
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return tools, nil
}
