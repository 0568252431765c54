package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ljn0099/picoweather/internal/credential"
	"github.com/ljn0099/picoweather/internal/validate"
)

// apiKeyRoles is the closed set of API key roles accepted by api_key_create.
var apiKeyRoles = map[string]bool{
	"weather_upload":      true,
	"stations_management": true,
	"stations_control":    true,
}

const selectAPIKeysBase = `SELECT k.uuid, k.name, k.role, k.expires_at, k.revoked_at, st.name AS station_name
	FROM auth.api_keys k
	JOIN auth.users u ON k.user_id = u.user_id
	LEFT JOIN stations.stations st ON k.station_id = st.station_id
	WHERE u.deleted_at IS NULL AND k.revoked_at IS NULL AND (u.uuid::text = $1 OR u.username = $1)`

const insertAPIKeyQuery = `INSERT INTO auth.api_keys (uuid, user_id, station_id, name, key_hash, role)
	SELECT $1, u.user_id,
	       (SELECT s.station_id FROM stations.stations s WHERE (s.uuid::text = $2 OR s.name = $2) AND s.deleted_at IS NULL),
	       $3, $4, $5
	FROM auth.users u WHERE (u.uuid::text = $6 OR u.username = $6) AND u.deleted_at IS NULL`

const revokeAPIKeyQuery = `UPDATE auth.api_keys k SET revoked_at = NOW()
	FROM auth.users u
	WHERE k.user_id = u.user_id AND k.uuid::text = $1
	  AND (u.uuid::text = $2 OR u.username = $2) AND k.revoked_at IS NULL`

// APIKeyCreate implements api_key_create: mirrors sessions_create's token
// lifecycle, with an added role and an optional owning station. The
// plaintext key is returned exactly once via SideToken.
func (s *Services) APIKeyCreate(ctx context.Context, userRef, name, role, stationRef string, auth AuthMaterial) Result {
	if !validate.Name(name) {
		return outcome(InvalidParams)
	}
	if !apiKeyRoles[role] {
		return outcome(InvalidParams)
	}
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}

	plaintext, hash, err := credential.MintToken()
	if err != nil {
		return outcome(MemoryError)
	}

	id := uuid.NewString()

	h := s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, insertAPIKeyQuery, id, stationRef, name, hash, role, userRef)
	if err != nil {
		return outcome(DBError)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return outcome(NotFound)
	}

	rows, err := h.QueryContext(ctx, selectAPIKeysBase+" AND k.uuid::text = $2", userRef, id)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	return okWithToken(body, plaintext)
}

// APIKeyList implements api_key_list.
func (s *Services) APIKeyList(ctx context.Context, userRef string, keyUUID *string, auth AuthMaterial) Result {
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}

	h := s.pool.Acquire()
	defer h.Release()

	query := selectAPIKeysBase + " ORDER BY k.name"
	args := []any{userRef}
	canBeObject := false
	if keyUUID != nil {
		query = selectAPIKeysBase + " AND k.uuid::text = $2"
		args = append(args, *keyUUID)
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

// APIKeyDelete implements api_key_delete: revokes the named key owned by
// userRef (self or admin scope).
func (s *Services) APIKeyDelete(ctx context.Context, userRef, keyUUID string, auth AuthMaterial) Result {
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}
	if !validate.UUID(keyUUID) {
		return outcome(InvalidParams)
	}

	h := s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, revokeAPIKeyQuery, keyUUID, userRef)
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
