package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"homecare/models"
)

const defaultBaseURL = "https://maps.apigw.ntruss.com/map-direction/v1/driving"

// Client calls the driving-direction API. All failure modes (transport
// errors, timeouts, non-2xx statuses, error envelopes, empty routes) surface
// as a plain error so the caller can treat them uniformly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	key        string
}

func NewClient(keyID, key string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		keyID:      keyID,
		key:        key,
	}
}

// DrivingTimeSeconds returns the traffic-aware driving duration from origin
// to destination in seconds (minimum 1 after ms conversion).
func (c *Client) DrivingTimeSeconds(ctx context.Context, origin, destination models.Coordinates) (int, error) {
	params := url.Values{}
	// The API expects "lon,lat" order for both endpoints.
	params.Set("start", fmt.Sprintf("%f,%f", origin.Lon, origin.Lat))
	params.Set("goal", fmt.Sprintf("%f,%f", destination.Lon, destination.Lat))
	params.Set("option", "traoptimal")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("x-ncp-apigw-api-key-id", c.keyID)
	req.Header.Set("x-ncp-apigw-api-key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("direction api status %s", resp.Status)
	}

	var dr DirectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return 0, fmt.Errorf("decode direction response: %w", err)
	}
	if dr.Code != 0 {
		return 0, fmt.Errorf("direction api code %d: %s", dr.Code, dr.Message)
	}

	opt, ok := dr.Route.best()
	if !ok {
		return 0, fmt.Errorf("direction api returned no route")
	}

	seconds := int(opt.Summary.DurationMs / 1000)
	if seconds < 1 {
		seconds = 1
	}
	return seconds, nil
}
