package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"QuantChart/internal/figure"
)

// OnlineRenderer publishes figures to a remote plot service.
type OnlineRenderer struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewOnlineRenderer creates a renderer with optional proxy support. The
// client has no timeout of its own; the caller's context bounds each call.
func NewOnlineRenderer(baseURL, apiKey, proxyURL string) *OnlineRenderer {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &OnlineRenderer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Transport: transport},
	}
}

type plotRequest struct {
	Filename string         `json:"filename"`
	Figure   *figure.Figure `json:"figure"`
}

type plotResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Render POSTs the figure to <base>/api/v1/plots and returns the URL the
// service answers with.
func (r *OnlineRenderer) Render(ctx context.Context, fig *figure.Figure, id string) (string, error) {
	if r.BaseURL == "" {
		return "", fmt.Errorf("online renderer has no base url")
	}
	body, err := json.Marshal(plotRequest{Filename: id, Figure: fig})
	if err != nil {
		return "", fmt.Errorf("encode figure: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/api/v1/plots", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post figure: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("post figure: status %d, body: %s", resp.StatusCode, string(b))
	}
	var result plotResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode plot response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("plot service: %s", result.Error)
	}
	if result.URL == "" {
		return "", fmt.Errorf("plot service returned no url")
	}
	return result.URL, nil
}
