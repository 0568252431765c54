package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteMatchesEveryFixedPattern(t *testing.T) {
	cases := []struct {
		path string
		want Match
	}{
		{"/users", Match{Endpoint: EndpointUsersCollection}},
		{"/users/alice", Match{Endpoint: EndpointUser, ID: "alice"}},
		{"/users/alice/sessions", Match{Endpoint: EndpointUserSessionsCollection, ID: "alice"}},
		{"/users/alice/sessions/abc-123", Match{Endpoint: EndpointUserSession, ID: "alice", SessionUUID: "abc-123"}},
		{"/users/alice/api-keys", Match{Endpoint: EndpointUserAPIKeysCollection, ID: "alice"}},
		{"/users/alice/api-keys/key-1", Match{Endpoint: EndpointUserAPIKey, ID: "alice", KeyID: "key-1"}},
		{"/stations", Match{Endpoint: EndpointStationsCollection}},
		{"/stations/garden", Match{Endpoint: EndpointStation, StationRef: "garden"}},
		{"/stations/garden/weather-data", Match{Endpoint: EndpointStationWeatherData, StationRef: "garden"}},
	}

	for _, c := range cases {
		got := Route(c.path)
		if got != c.want {
			t.Errorf("Route(%q) = %+v, want %+v", c.path, got, c.want)
		}
	}
}

func TestRouteRejectsUnmatchedPaths(t *testing.T) {
	for _, path := range []string{"/", "/bogus", "/users/alice/bogus", "/stations/garden/weather-data/extra"} {
		if got := Route(path); got.Endpoint != EndpointNone {
			t.Errorf("Route(%q) = %+v, want EndpointNone", path, got)
		}
	}
}

func TestExtractAuthReadsCookieHeaderAndPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	req.AddCookie(&http.Cookie{Name: "sessiontoken", Value: "tok123"})
	req.Header.Set("X-API-KEY", "key456")
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "203.0.113.7:54321"

	auth := ExtractAuth(req)
	if auth.SessionToken != "tok123" {
		t.Errorf("SessionToken = %q, want tok123", auth.SessionToken)
	}
	if auth.APIKey != "key456" {
		t.Errorf("APIKey = %q, want key456", auth.APIKey)
	}
	if auth.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q, want test-agent", auth.UserAgent)
	}
	if auth.PeerIP != "203.0.113.7" {
		t.Errorf("PeerIP = %q, want 203.0.113.7", auth.PeerIP)
	}
}

func TestExtractAuthUnwrapsIPv4MappedIPv6(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stations", nil)
	req.RemoteAddr = "[::ffff:192.0.2.10]:443"

	auth := ExtractAuth(req)
	if auth.PeerIP != "192.0.2.10" {
		t.Errorf("PeerIP = %q, want 192.0.2.10", auth.PeerIP)
	}
}

func TestParseWeatherQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stations/garden/weather-data?granularity=day&start_time=2026-01-01T00:00:00&end_time=2026-01-02T00:00:00&timezone=Europe/Madrid&fields=temperature,humidity", nil)
	q := ParseWeatherQuery(req)
	if q.Granularity != "day" || q.StartTime != "2026-01-01T00:00:00" || q.EndTime != "2026-01-02T00:00:00" || q.Timezone != "Europe/Madrid" || q.Fields != "temperature,humidity" {
		t.Errorf("ParseWeatherQuery = %+v, unexpected", q)
	}
}
