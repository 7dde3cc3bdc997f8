package satellite

import "testing"

func TestFrequencyKnownSatellite(t *testing.T) {
	f, ok := Frequency("iss")
	if !ok {
		t.Fatal("expected ISS to resolve")
	}
	if f != 145.825 {
		t.Fatalf("got %v", f)
	}
}

func TestFrequencyUnknownSatellite(t *testing.T) {
	if _, ok := Frequency("not-a-sat"); ok {
		t.Fatal("expected unknown satellite to miss")
	}
}

func TestNewClientDefaultsMinElevation(t *testing.T) {
	c := NewClient(&Store{}, 0)
	if c.minElevationDeg != DefaultMinElevationDeg {
		t.Fatalf("got %v", c.minElevationDeg)
	}
}
