package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Provider fetches a candidate's profile by ID from an external system.
type Provider interface {
	Fetch(ctx context.Context, candidateID string) (*Candidate, error)
}

// HTTPProvider fetches candidate profiles from a resume-service REST endpoint.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider for the given resume service base URL.
func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	return &HTTPProvider{baseURL: baseURL, client: client}
}

// Fetch retrieves the candidate profile from GET {base}/api/candidates/{id}/profile.
func (p *HTTPProvider) Fetch(ctx context.Context, candidateID string) (*Candidate, error) {
	endpoint := fmt.Sprintf("%s/api/candidates/%s/profile", p.baseURL, url.PathEscape(candidateID))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("profile status %d: %s", resp.StatusCode, string(body))
	}

	var c Candidate
	if err = json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	return &c, nil
}
