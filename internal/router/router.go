// Package router is the hand-rolled URL pattern matcher: it turns a
// request path into a typed endpoint variant with captured path
// parameters (method dispatch is left to the caller), and extracts auth material and typed query parameters
// out of the underlying *http.Request.
package router

import (
	"net"
	"net/http"
	"strings"

	"github.com/ljn0099/picoweather/internal/service"
)

// Endpoint is the tagged variant produced by Route. EndpointNone means the
// path matched nothing the server exposes.
type Endpoint int

const (
	EndpointNone Endpoint = iota
	EndpointUsersCollection
	EndpointUser
	EndpointUserSessionsCollection
	EndpointUserSession
	EndpointUserAPIKeysCollection
	EndpointUserAPIKey
	EndpointStationsCollection
	EndpointStation
	EndpointStationWeatherData
)

// Match is the result of matching a request path: the endpoint variant
// plus whatever path parameters it captured.
type Match struct {
	Endpoint Endpoint
	// ID is the {id} segment of a /users/... route (UUID or username).
	ID string
	// SessionUUID is the {sessionUUID} segment of a /users/{id}/sessions/{sessionUUID} route.
	SessionUUID string
	// KeyID is the {keyId} segment of a /users/{id}/api-keys/{keyId} route.
	KeyID string
	// StationRef is the {stationRef} segment of a /stations/... route.
	StationRef string
}

// Route pattern-matches the path in a fixed, small order — a
// table-driven matcher over path segments rather than a regex tree, since
// the whole pattern set is nine fixed shapes. Unmatched paths return
// EndpointNone, which handlers treat as HTTP 404.
func Route(path string) Match {
	segs := splitPath(path)

	switch len(segs) {
	case 1:
		switch segs[0] {
		case "users":
			return Match{Endpoint: EndpointUsersCollection}
		case "stations":
			return Match{Endpoint: EndpointStationsCollection}
		}
	case 2:
		switch segs[0] {
		case "users":
			return Match{Endpoint: EndpointUser, ID: segs[1]}
		case "stations":
			return Match{Endpoint: EndpointStation, StationRef: segs[1]}
		}
	case 3:
		switch {
		case segs[0] == "users" && segs[2] == "sessions":
			return Match{Endpoint: EndpointUserSessionsCollection, ID: segs[1]}
		case segs[0] == "users" && segs[2] == "api-keys":
			return Match{Endpoint: EndpointUserAPIKeysCollection, ID: segs[1]}
		case segs[0] == "stations" && segs[2] == "weather-data":
			return Match{Endpoint: EndpointStationWeatherData, StationRef: segs[1]}
		}
	case 4:
		switch {
		case segs[0] == "users" && segs[2] == "sessions":
			return Match{Endpoint: EndpointUserSession, ID: segs[1], SessionUUID: segs[3]}
		case segs[0] == "users" && segs[2] == "api-keys":
			return Match{Endpoint: EndpointUserAPIKey, ID: segs[1], KeyID: segs[3]}
		}
	}
	return Match{Endpoint: EndpointNone}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// WeatherQuery is the typed set of query parameters accepted by the
// weather-data endpoint.
type WeatherQuery struct {
	Granularity string
	StartTime   string
	EndTime     string
	Timezone    string
	Fields      string
}

// ParseWeatherQuery extracts the weather-data endpoint's query parameters
// from the request URL. Validation of their contents is C5's job.
func ParseWeatherQuery(r *http.Request) WeatherQuery {
	q := r.URL.Query()
	return WeatherQuery{
		Granularity: q.Get("granularity"),
		StartTime:   q.Get("start_time"),
		EndTime:     q.Get("end_time"),
		Timezone:    q.Get("timezone"),
		Fields:      q.Get("fields"),
	}
}

// sessionCookieName is the cookie the session token travels as.
const sessionCookieName = "sessiontoken"

// apiKeyHeaderName is the header an API key travels as.
const apiKeyHeaderName = "X-API-KEY"

// ExtractAuth pulls AuthMaterial out of a request's cookies, headers and
// connection metadata.
func ExtractAuth(r *http.Request) service.AuthMaterial {
	var token string
	if c, err := r.Cookie(sessionCookieName); err == nil {
		token = c.Value
	}
	return service.AuthMaterial{
		SessionToken: token,
		APIKey:       r.Header.Get(apiKeyHeaderName),
		PeerIP:       peerIP(r),
		UserAgent:    r.Header.Get("User-Agent"),
	}
}

// peerIP extracts the remote address, unwrapping an IPv4-mapped IPv6
// address to its canonical IPv4 form.
func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return host
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}
