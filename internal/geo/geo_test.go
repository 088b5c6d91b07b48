package geo

import "testing"

func TestHaversineMilesZero(t *testing.T) {
	d := HaversineMiles(40.8075, -73.9626, 40.8075, -73.9626)
	if d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineMilesKnownDistance(t *testing.T) {
	// Columbia campus to JFK, roughly 15.5 miles great-circle.
	d := HaversineMiles(40.8075, -73.9626, 40.6413, -73.7781)
	if d < 14.5 || d > 16.5 {
		t.Fatalf("expected ~15.5 miles, got %f", d)
	}
}

func TestDistanceLabel(t *testing.T) {
	if got := DistanceLabel(0.5); got != "0.5 mi away" {
		t.Fatalf("got %q", got)
	}
	if got := DistanceLabel(0.02); got != "110 ft away" {
		t.Fatalf("got %q", got)
	}
}
