package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"homecare/models"
)

// DefaultBaseURL is the public Nominatim search endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Client resolves free-form addresses to coordinates through a
// Nominatim-compatible geocoding service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  "homecare-matcher/1.0",
	}
}

// nominatimResult is shaped for the API response. Only the fields the
// matcher reads are declared.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road         string `json:"road"`
		Borough      string `json:"borough"`
		CityDistrict string `json:"city_district"`
		Suburb       string `json:"suburb"`
		City         string `json:"city"`
	} `json:"address"`
}

// Resolve geocodes an address and returns a service location built from the
// first result. Nominatim orders results by relevance, so the first one is
// the best interpretation of the query.
func (c *Client) Resolve(ctx context.Context, address string) (models.ServiceLocation, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return models.ServiceLocation{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.ServiceLocation{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ServiceLocation{}, fmt.Errorf("geocode %q: unexpected status %s", address, resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.ServiceLocation{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return models.ServiceLocation{}, fmt.Errorf("no geocoding results for %q", address)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return models.ServiceLocation{}, fmt.Errorf("parse latitude %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return models.ServiceLocation{}, fmt.Errorf("parse longitude %q: %w", first.Lon, err)
	}

	loc := models.ServiceLocation{
		Coordinates: models.Coordinates{Lat: lat, Lon: lon},
		RoadAddress: first.Address.Road,
		AdminArea:   adminArea(first),
		Source:      "nominatim",
	}
	if err := loc.Coordinates.Validate(); err != nil {
		return models.ServiceLocation{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	return loc, nil
}

// adminArea picks the district-level division. Korean addresses surface the
// "gu" under different keys depending on the city.
func adminArea(r nominatimResult) string {
	for _, v := range []string{r.Address.Borough, r.Address.CityDistrict, r.Address.Suburb, r.Address.City} {
		if v != "" {
			return v
		}
	}
	return ""
}
