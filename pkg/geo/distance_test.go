package geo

import (
	"math"
	"testing"

	"homecare/models"
)

func TestDistanceKm(t *testing.T) {
	cases := []struct {
		name  string
		a, b  models.Coordinates
		minKm float64
		maxKm float64
	}{
		{
			name:  "seoul city hall to euljiro",
			a:     models.Coordinates{Lat: 37.5665, Lon: 126.9780},
			b:     models.Coordinates{Lat: 37.5651, Lon: 126.9895},
			minKm: 0.8,
			maxKm: 1.2,
		},
		{
			name:  "seoul to busan",
			a:     models.Coordinates{Lat: 37.5665, Lon: 126.9780},
			b:     models.Coordinates{Lat: 35.1796, Lon: 129.0756},
			minKm: 310,
			maxKm: 340,
		},
		{
			name:  "across the antimeridian",
			a:     models.Coordinates{Lat: 0, Lon: 179.5},
			b:     models.Coordinates{Lat: 0, Lon: -179.5},
			minKm: 100,
			maxKm: 120,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceKm(tc.a, tc.b)
			if got < tc.minKm || got > tc.maxKm {
				t.Fatalf("DistanceKm = %v km; want within [%v, %v]", got, tc.minKm, tc.maxKm)
			}
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b models.Coordinates
	}{
		{models.Coordinates{Lat: 37.5665, Lon: 126.9780}, models.Coordinates{Lat: 37.5651, Lon: 126.9895}},
		{models.Coordinates{Lat: -33.8688, Lon: 151.2093}, models.Coordinates{Lat: 51.5074, Lon: -0.1278}},
		{models.Coordinates{Lat: 89.9, Lon: 0}, models.Coordinates{Lat: -89.9, Lon: 180}},
	}

	for _, p := range pairs {
		ab := DistanceKm(p.a, p.b)
		ba := DistanceKm(p.b, p.a)
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("DistanceKm(%v, %v) = %v but reversed = %v", p.a, p.b, ab, ba)
		}
	}
}

func TestDistanceKm_SamePoint(t *testing.T) {
	p := models.Coordinates{Lat: 37.5665, Lon: 126.9780}
	if got := DistanceKm(p, p); got != 0 {
		t.Fatalf("DistanceKm(p, p) = %v; want 0", got)
	}
}
