package api

import (
	"net/http"

	"github.com/ljn0099/picoweather/internal/service"
)

type createStationRequest struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude float64 `json:"altitude"`
}

func (h *Handler) createStation(w http.ResponseWriter, r *http.Request, auth service.AuthMaterial) {
	var req createStationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.svc.StationsCreate(r.Context(), req.Name, req.Lon, req.Lat, req.Altitude, auth)
	WriteResult(w, r.Method, result)
}

func (h *Handler) listStations(w http.ResponseWriter, r *http.Request, stationRef *string) {
	result := h.svc.StationsList(r.Context(), stationRef)
	WriteResult(w, r.Method, result)
}

type patchStationRequest struct {
	Name    *string `json:"name"`
	Deleted bool    `json:"deleted"`
}

func (h *Handler) patchStation(w http.ResponseWriter, r *http.Request, stationRef string, auth service.AuthMaterial) {
	var req patchStationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.svc.StationsPatch(r.Context(), stationRef, req.Name, req.Deleted, auth)
	WriteResult(w, r.Method, result)
}
