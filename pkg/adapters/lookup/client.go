// Package lookup implements the external reference tools the assistant can
// call while answering: Brazilian postal codes (ViaCEP), Pokemon species
// (PokeAPI), Brazilian geography (IBGE), weather (Open-Meteo) and TV shows
// (TVMaze). Every tool returns a closed result variant from
// domain/model/lookup; upstream failures become Failure values, never Go
// errors.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "kasumi/1.0"
)

// errNotFound marks an upstream 404 so callers can map it to the tool's
// own not-found variant instead of a generic failure
var errNotFound = fmt.Errorf("resource not found")

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
	}
}

// getJSON fetches url and decodes the response body into v. A 404 returns
// errNotFound; other non-2xx statuses are generic errors.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
