// Package api implements the HTTP handlers (C7): it decodes JSON request
// bodies, calls one service operation, and maps its outcome to an HTTP
// status and response body.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ljn0099/picoweather/internal/service"
)

// JSON writes status with payload marshaled as the body. payload may
// already be a json.RawMessage (a service result body) or any other
// JSON-marshalable value.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorBody is the frozen error response shape: {"error":"<message>"}.
type errorBody struct {
	Error string `json:"error"`
}

// JSONError writes status with an {"error":"<message>"} body.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// successStatus is the frozen outcome-to-status map for OK results,
// keyed by HTTP method.
func successStatus(method string) int {
	switch method {
	case http.MethodPost:
		return http.StatusCreated
	case http.MethodDelete:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}

// statusForOutcome maps a non-OK outcome to its frozen HTTP status.
func statusForOutcome(o service.Outcome) int {
	switch o {
	case service.InvalidParams:
		return http.StatusBadRequest
	case service.AuthError:
		return http.StatusUnauthorized
	case service.Forbidden:
		return http.StatusForbidden
	case service.NotFound:
		return http.StatusNotFound
	case service.DBError, service.JSONError, service.MemoryError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage supplies the human-readable text accompanying a non-OK
// outcome; the frozen error body never echoes internal detail back to
// the client.
func errorMessage(o service.Outcome) string {
	switch o {
	case service.InvalidParams:
		return "invalid parameters"
	case service.AuthError:
		return "authentication required"
	case service.Forbidden:
		return "forbidden"
	case service.NotFound:
		return "not found"
	case service.DBError:
		return "database error"
	case service.JSONError:
		return "encoding error"
	case service.MemoryError:
		return "internal error"
	default:
		return "internal error"
	}
}

// WriteResult translates a service.Result into the HTTP response for the
// given request method, per the frozen status map in spec §4.7. WriteResult
// writes only Body; a non-empty SideToken is handled by the caller first:
// the sessions_create handler emits it as Set-Cookie, and the
// api_key_create handler adds it to the body as "api_key".
func WriteResult(w http.ResponseWriter, method string, result service.Result) {
	if result.Outcome != service.OK {
		JSONError(w, statusForOutcome(result.Outcome), errorMessage(result.Outcome))
		return
	}
	status := successStatus(method)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if result.Body == nil {
		w.WriteHeader(status)
		return
	}
	JSON(w, status, result.Body)
}

// decodeJSON decodes the request body into dst, writing an INVALID_PARAMS
// response and returning false on failure so handlers can early-return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
