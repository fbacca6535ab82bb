// Package geo wraps the GeoDB Cities API used for city and region search.
// Responses are passed through as-is and cached in Redis; city data changes
// rarely and the provider is rate limited.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shiporbit/internal/redis"
)

// Client is a GeoDB Cities API client with a Redis read-through cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
	cache      redis.GeoCacheInterface
}

// NewClient creates a new geocoding client. cache may be nil, in which case
// every search hits the provider.
func NewClient(baseURL, apiKey, apiHost string, cache redis.GeoCacheInterface) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiHost:    apiHost,
		cache:      cache,
	}
}

// SearchCities searches cities by name prefix. The provider's response
// payload is returned unmodified so clients see the provider's own city
// records, coordinates included.
func (c *Client) SearchCities(ctx context.Context, namePrefix string) (json.RawMessage, error) {
	if c.cache != nil {
		cached, err := c.cache.GetCitySearch(ctx, namePrefix)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	data, err := c.get(ctx, "cities", url.Values{"namePrefix": {namePrefix}})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.SetCitySearch(ctx, namePrefix, data)
	}

	return data, nil
}

// SearchRegions searches a country's regions by name prefix.
func (c *Client) SearchRegions(ctx context.Context, countryCode, namePrefix string) (json.RawMessage, error) {
	if c.cache != nil {
		cached, err := c.cache.GetRegionSearch(ctx, countryCode, namePrefix)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("countries/%s/regions", url.PathEscape(countryCode))
	data, err := c.get(ctx, endpoint, url.Values{"namePrefix": {namePrefix}})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.SetRegionSearch(ctx, countryCode, namePrefix, data)
	}

	return data, nil
}

// get performs a provider request and unwraps the "data" envelope.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geocoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("geocoding response: %w", err)
	}
	if envelope.Data == nil {
		return json.RawMessage("[]"), nil
	}

	return envelope.Data, nil
}
