package geo

import "testing"

func TestHaversineZeroDistance(t *testing.T) {
	if d := Haversine(50, 9, 50, 9); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestMaidenheadRoundTrip(t *testing.T) {
	grid := ToMaidenhead(51.5, -0.1, 6)
	lat, lon, err := FromMaidenhead(grid)
	if err != nil {
		t.Fatal(err)
	}
	if lat < 51 || lat > 52 || lon < -1 || lon > 1 {
		t.Fatalf("round trip drifted too far: %v,%v", lat, lon)
	}
}

func TestFromMaidenheadRejectsOddLength(t *testing.T) {
	if _, _, err := FromMaidenhead("AB1"); err == nil {
		t.Fatal("expected error for odd-length locator")
	}
}

// TestFromMaidenheadFieldOrigin pins the decode of the AA00 locator (the
// southwest corner of the grid, field letters both 'A') to catch a
// latitude-offset regression: using 'B' instead of 'A' as the subtraction
// base shifts every decoded latitude by 10 degrees.
func TestFromMaidenheadFieldOrigin(t *testing.T) {
	lat, lon, err := FromMaidenhead("AA00")
	if err != nil {
		t.Fatal(err)
	}
	if lat < -90 || lat > -89 {
		t.Errorf("lat = %v, want just north of -90", lat)
	}
	if lon < -180 || lon > -178 {
		t.Errorf("lon = %v, want just east of -180", lon)
	}
}

func TestBearingCardinalDirections(t *testing.T) {
	if b := Bearing(0, 0, 1, 0); b < -1 || b > 1 {
		t.Errorf("due north bearing = %v, want ~0", b)
	}
	if b := Bearing(0, 0, 0, 1); b < 89 || b > 91 {
		t.Errorf("due east bearing = %v, want ~90", b)
	}
}
