package api

import (
	"encoding/json"
	"net/http"

	"github.com/ljn0099/picoweather/internal/service"
)

type createAPIKeyRequest struct {
	Name       string `json:"name"`
	APIKeyType string `json:"api_key_type"`
	StationID  string `json:"station_id"`
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request, userRef string, auth service.AuthMaterial) {
	var req createAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.svc.APIKeyCreate(r.Context(), userRef, req.Name, req.APIKeyType, req.StationID, auth)
	if result.Outcome == service.OK && result.SideToken != "" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(result.Body, &obj); err != nil {
			JSONError(w, http.StatusInternalServerError, "encoding error")
			return
		}
		obj["api_key"], _ = json.Marshal(result.SideToken)
		body, err := json.Marshal(obj)
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "encoding error")
			return
		}
		result.Body = body
	}
	WriteResult(w, r.Method, result)
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request, userRef string, keyUUID *string, auth service.AuthMaterial) {
	result := h.svc.APIKeyList(r.Context(), userRef, keyUUID, auth)
	WriteResult(w, r.Method, result)
}

func (h *Handler) deleteAPIKey(w http.ResponseWriter, r *http.Request, userRef, keyUUID string, auth service.AuthMaterial) {
	result := h.svc.APIKeyDelete(r.Context(), userRef, keyUUID, auth)
	WriteResult(w, r.Method, result)
}
