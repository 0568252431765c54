package api

import (
	"net/http"

	"github.com/ljn0099/picoweather/internal/service"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.svc.UsersCreate(r.Context(), req.Username, req.Email, req.Password)
	WriteResult(w, r.Method, result)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request, auth service.AuthMaterial) {
	result := h.svc.UsersList(r.Context(), nil, auth)
	WriteResult(w, r.Method, result)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, id string, auth service.AuthMaterial) {
	result := h.svc.UsersList(r.Context(), &id, auth)
	WriteResult(w, r.Method, result)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id string, auth service.AuthMaterial) {
	result := h.svc.UsersDelete(r.Context(), id, auth)
	WriteResult(w, r.Method, result)
}

type patchUserRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	OldPassword *string `json:"oldPassword"`
	MaxStations *int    `json:"max_stations"`
	IsAdmin     *bool   `json:"is_admin"`
}

func (h *Handler) patchUser(w http.ResponseWriter, r *http.Request, id string, auth service.AuthMaterial) {
	var req patchUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.svc.UsersPatch(r.Context(), id, service.UsersPatchParams{
		Username:    req.Username,
		Email:       req.Email,
		MaxStations: req.MaxStations,
		IsAdmin:     req.IsAdmin,
		OldPassword: req.OldPassword,
		NewPassword: req.Password,
	}, auth)
	WriteResult(w, r.Method, result)
}
