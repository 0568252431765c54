package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ljn0099/picoweather/internal/credential"
	"github.com/ljn0099/picoweather/internal/validate"
)

// DefaultSessionMaxAge is the lifetime, in seconds, of a freshly created
// session when the caller does not override it.
const DefaultSessionMaxAge = 3600

const selectSessionsBase = `SELECT s.uuid, s.created_at, s.last_seen_at, s.expires_at, s.revoked_at, s.ip_address, s.user_agent
	FROM auth.user_sessions s JOIN auth.users u ON s.user_id = u.user_id
	WHERE u.deleted_at IS NULL AND s.expires_at > NOW() AND s.revoked_at IS NULL
	  AND (u.uuid::text = $1 OR u.username = $1)`

const insertSessionQuery = `INSERT INTO auth.user_sessions (uuid, user_id, session_token, expires_at, ip_address, user_agent)
	SELECT $1, user_id, $2, NOW() + ($3 || ' seconds')::interval, $4, $5
	FROM auth.users WHERE (uuid::text = $6 OR username = $6) AND deleted_at IS NULL`

const revokeSessionQuery = `UPDATE auth.user_sessions s SET revoked_at = NOW()
	FROM auth.users u
	WHERE s.user_id = u.user_id AND s.uuid::text = $1
	  AND (u.uuid::text = $2 OR u.username = $2) AND s.revoked_at IS NULL`

// SessionsCreate implements sessions_create: password proof, mint a token,
// persist its hash with an expiry maxAgeSeconds out, and return the
// created session record alongside the plaintext token (SideToken) for
// Set-Cookie emission — the only time the plaintext is ever available.
func (s *Services) SessionsCreate(ctx context.Context, userRef, password string, maxAgeSeconds int, auth AuthMaterial) Result {
	if !s.cred.ValidatePassword(ctx, userRef, password) {
		return outcome(AuthError)
	}

	plaintext, hash, err := credential.MintToken()
	if err != nil {
		return outcome(MemoryError)
	}

	id := uuid.NewString()

	h := s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, insertSessionQuery, id, hash, maxAgeSeconds, auth.PeerIP, auth.UserAgent, userRef)
	if err != nil {
		return outcome(DBError)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return outcome(NotFound)
	}

	rows, err := h.QueryContext(ctx, selectSessionsBase+" AND s.uuid::text = $2", userRef, id)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	return okWithToken(body, plaintext)
}

// SessionsList implements sessions_list: the caller must hold a session
// scoped to userRef (self or admin); sessionUUID, if given, narrows to a
// single active session.
func (s *Services) SessionsList(ctx context.Context, userRef string, sessionUUID *string, auth AuthMaterial) Result {
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}

	h := s.pool.Acquire()
	defer h.Release()

	query := selectSessionsBase + " ORDER BY s.created_at"
	args := []any{userRef}
	canBeObject := false
	if sessionUUID != nil {
		query = selectSessionsBase + " AND s.uuid::text = $2"
		args = append(args, *sessionUUID)
		canBeObject = true
	}

	rows, err := h.QueryContext(ctx, query, args...)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, canBeObject)
	if err != nil {
		return outcome(JSONError)
	}
	if canBeObject && emptyArray(body) {
		return outcome(NotFound)
	}
	return ok(body)
}

// SessionsDelete implements sessions_delete: revokes the named session
// owned by userRef (self or admin scope).
func (s *Services) SessionsDelete(ctx context.Context, userRef, sessionUUID string, auth AuthMaterial) Result {
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}
	if !validate.UUID(sessionUUID) {
		return outcome(InvalidParams)
	}

	h := s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, revokeSessionQuery, sessionUUID, userRef)
	if err != nil {
		return outcome(DBError)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return outcome(DBError)
	}
	if n == 0 {
		return outcome(NotFound)
	}
	return Result{Outcome: OK}
}
