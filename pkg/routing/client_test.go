package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homecare/models"
)

var (
	origin      = models.Coordinates{Lat: 37.4979, Lon: 127.0276}
	destination = models.Coordinates{Lat: 37.5665, Lon: 126.9780}
)

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    serverURL,
		keyID:      "test-key-id",
		key:        "test-key",
	}
}

func TestDrivingTimeSeconds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		want    int
		wantErr bool
	}{
		{
			name:   "traoptimal route",
			status: http.StatusOK,
			body: DirectionResponse{
				Route: Route{Traoptimal: []RouteOption{{Summary: Summary{DurationMs: 1_563_000}}}},
			},
			want: 1563,
		},
		{
			name:   "trafast fallback route",
			status: http.StatusOK,
			body: DirectionResponse{
				Route: Route{Trafast: []RouteOption{{Summary: Summary{DurationMs: 900_000}}}},
			},
			want: 900,
		},
		{
			name:   "sub-second duration floors at one",
			status: http.StatusOK,
			body: DirectionResponse{
				Route: Route{Traoptimal: []RouteOption{{Summary: Summary{DurationMs: 400}}}},
			},
			want: 1,
		},
		{
			name:    "error envelope",
			status:  http.StatusOK,
			body:    DirectionResponse{Code: 1, Message: "departure and destination are too close"},
			wantErr: true,
		},
		{
			name:    "no route in response",
			status:  http.StatusOK,
			body:    DirectionResponse{},
			wantErr: true,
		},
		{
			name:    "authentication failure",
			status:  http.StatusUnauthorized,
			body:    map[string]string{"error": "invalid key"},
			wantErr: true,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    "not json at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("x-ncp-apigw-api-key-id"); got != "test-key-id" {
					t.Errorf("missing key-id header, got %q", got)
				}
				w.WriteHeader(tt.status)
				if s, ok := tt.body.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			got, err := newTestClient(server.URL).DrivingTimeSeconds(context.Background(), origin, destination)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error presence mismatch: err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d seconds, want %d", got, tt.want)
			}
		})
	}
}

func TestDrivingTimeSeconds_RequestShape(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(DirectionResponse{
			Route: Route{Traoptimal: []RouteOption{{Summary: Summary{DurationMs: 60_000}}}},
		})
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).DrivingTimeSeconds(context.Background(), origin, destination); err != nil {
		t.Fatalf("DrivingTimeSeconds error: %v", err)
	}

	// Both endpoints must be sent lon,lat.
	if !strings.Contains(gotQuery, "start=127.027600%2C37.497900") {
		t.Errorf("start param not lon,lat ordered: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "goal=126.978000%2C37.566500") {
		t.Errorf("goal param not lon,lat ordered: %s", gotQuery)
	}
}

func TestDrivingTimeSeconds_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.DrivingTimeSeconds(ctx, origin, destination); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
