package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersZero(t *testing.T) {
	if d := DistanceMeters(35.6892, 51.3890, 35.6892, 51.3890); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestDistanceMetersSymmetry(t *testing.T) {
	d1 := DistanceMeters(35.6892, 51.3890, 35.6997, 51.3380)
	d2 := DistanceMeters(35.6997, 51.3380, 35.6892, 51.3890)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("expected symmetric distances: %v vs %v", d1, d2)
	}
}

func TestDistanceMetersTehran(t *testing.T) {
	// Azadegan to Azadi Square, roughly 4.7 km
	d := DistanceMeters(35.6892, 51.3890, 35.6997, 51.3380)
	if d < 4000 || d > 5500 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineKm(t *testing.T) {
	// Tehran to Karaj ~ 35-45 km
	d := HaversineKm(35.6892, 51.3890, 35.8400, 50.9391)
	if d < 30 || d > 50 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestBearingDegrees(t *testing.T) {
	if b := BearingDegrees(35.0, 51.0, 36.0, 51.0); b != 0 {
		t.Fatalf("expected due north, got %v", b)
	}
	if b := BearingDegrees(35.0, 51.0, 35.0, 52.0); b < 89 || b > 91 {
		t.Fatalf("expected roughly east, got %v", b)
	}
	if b := BearingDegrees(36.0, 51.0, 35.0, 51.0); b != 180 {
		t.Fatalf("expected due south, got %v", b)
	}
	if b := BearingDegrees(35.0, 52.0, 35.0, 51.0); b < 269 || b > 271 {
		t.Fatalf("expected roughly west, got %v", b)
	}
}

func TestBearingNaNPropagates(t *testing.T) {
	if b := BearingDegrees(math.NaN(), 51, 35, 51); !math.IsNaN(b) {
		t.Fatalf("expected NaN bearing, got %v", b)
	}
	if d := DistanceMeters(math.NaN(), 51, 35, 51); !math.IsNaN(d) {
		t.Fatalf("expected NaN distance, got %v", d)
	}
}
