package api

import (
	"net/http"

	"github.com/ljn0099/picoweather/internal/service"
)

type createSessionRequest struct {
	Password string `json:"password"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request, userRef string, auth service.AuthMaterial) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.svc.SessionsCreate(r.Context(), userRef, req.Password, service.DefaultSessionMaxAge, auth)
	if result.Outcome == service.OK && result.SideToken != "" {
		setSessionCookie(w, result.SideToken, service.DefaultSessionMaxAge, h.secure)
	}
	WriteResult(w, r.Method, result)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request, userRef string, sessionUUID *string, auth service.AuthMaterial) {
	result := h.svc.SessionsList(r.Context(), userRef, sessionUUID, auth)
	WriteResult(w, r.Method, result)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request, userRef, sessionUUID string, auth service.AuthMaterial) {
	result := h.svc.SessionsDelete(r.Context(), userRef, sessionUUID, auth)
	WriteResult(w, r.Method, result)
}

// setSessionCookie writes the frozen Set-Cookie header for a freshly
// minted session token: sessiontoken=<value>; Path=/; HttpOnly; Secure;
// SameSite=Lax; Max-Age=<N>. Secure is omitted only for local HTTP
// development (h.secure == false).
func setSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	cookie := &http.Cookie{
		Name:     "sessiontoken",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	http.SetCookie(w, cookie)
}
