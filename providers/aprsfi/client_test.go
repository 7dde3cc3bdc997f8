package aprsfi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPositionParsesSuccessfulLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"ok","found":1,"entries":[{"lat":"50.1","lng":"8.6","lasttime":"1700000000"}]}`))
	}))
	defer srv.Close()

	c := New("testkey")
	c.BaseURL = srv.URL
	lat, lon, _, ok := c.LastKnownPosition("DF1JSL-1")
	if !ok || lat != 50.1 || lon != 8.6 {
		t.Fatalf("unexpected result: lat=%v lon=%v ok=%v", lat, lon, ok)
	}
}

func TestPositionMissesWithoutAPIKey(t *testing.T) {
	c := New("")
	if _, _, _, ok := c.LastKnownPosition("DF1JSL-1"); ok {
		t.Fatal("expected a miss when no API key is configured")
	}
}

func TestPositionMissesOnNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"fail","found":0}`))
	}))
	defer srv.Close()

	c := New("testkey")
	c.BaseURL = srv.URL
	if _, _, _, ok := c.LastKnownPosition("N0CALL"); ok {
		t.Fatal("expected a miss for an unfound callsign")
	}
}
