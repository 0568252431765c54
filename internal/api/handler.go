package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ljn0099/picoweather/internal/router"
	"github.com/ljn0099/picoweather/internal/service"
)

// Handler is the top-level HTTP entry point: it matches the request path
// with internal/router, extracts auth material, and dispatches to the
// resource-specific handler methods below.
type Handler struct {
	svc    *service.Services
	log    *zap.Logger
	secure bool
}

// NewHandler returns a Handler bound to svc. secure controls whether
// Set-Cookie responses carry the Secure attribute (true in production
// behind TLS, false for local HTTP development).
func NewHandler(svc *service.Services, logger *zap.Logger, secure bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, log: logger.Named("api"), secure: secure}
}

// ServeHTTP implements http.Handler, dispatching on the matched endpoint
// variant and the request method. An unmatched path yields 404, matching
// an unsupported method on a matched path yields 404 as well — the
// router's patterns are exhaustive per method in §6.3, so no 405 case
// exists in the frozen contract.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	match := router.Route(r.URL.Path)
	auth := router.ExtractAuth(r)

	switch match.Endpoint {
	case router.EndpointUsersCollection:
		switch r.Method {
		case http.MethodPost:
			h.createUser(w, r)
			return
		case http.MethodGet:
			h.listUsers(w, r, auth)
			return
		}
	case router.EndpointUser:
		switch r.Method {
		case http.MethodGet:
			h.getUser(w, r, match.ID, auth)
			return
		case http.MethodPatch:
			h.patchUser(w, r, match.ID, auth)
			return
		case http.MethodDelete:
			h.deleteUser(w, r, match.ID, auth)
			return
		}
	case router.EndpointUserSessionsCollection:
		switch r.Method {
		case http.MethodPost:
			h.createSession(w, r, match.ID, auth)
			return
		case http.MethodGet:
			h.listSessions(w, r, match.ID, nil, auth)
			return
		}
	case router.EndpointUserSession:
		switch r.Method {
		case http.MethodGet:
			h.listSessions(w, r, match.ID, &match.SessionUUID, auth)
			return
		case http.MethodDelete:
			h.deleteSession(w, r, match.ID, match.SessionUUID, auth)
			return
		}
	case router.EndpointUserAPIKeysCollection:
		switch r.Method {
		case http.MethodPost:
			h.createAPIKey(w, r, match.ID, auth)
			return
		case http.MethodGet:
			h.listAPIKeys(w, r, match.ID, nil, auth)
			return
		}
	case router.EndpointUserAPIKey:
		switch r.Method {
		case http.MethodGet:
			h.listAPIKeys(w, r, match.ID, &match.KeyID, auth)
			return
		case http.MethodDelete:
			h.deleteAPIKey(w, r, match.ID, match.KeyID, auth)
			return
		}
	case router.EndpointStationsCollection:
		switch r.Method {
		case http.MethodPost:
			h.createStation(w, r, auth)
			return
		case http.MethodGet:
			h.listStations(w, r, nil)
			return
		}
	case router.EndpointStation:
		switch r.Method {
		case http.MethodGet:
			h.listStations(w, r, &match.StationRef)
			return
		case http.MethodPatch:
			h.patchStation(w, r, match.StationRef, auth)
			return
		}
	case router.EndpointStationWeatherData:
		if r.Method == http.MethodGet {
			h.weatherData(w, r, match.StationRef)
			return
		}
	}

	JSONError(w, http.StatusNotFound, "not found")
}
