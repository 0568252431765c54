package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ljn0099/picoweather/internal/credential"
	"github.com/ljn0099/picoweather/internal/validate"
)

const resolveUserByTokenQuery = `SELECT u.uuid FROM auth.user_sessions s JOIN auth.users u ON s.user_id = u.user_id
	WHERE s.session_token = $1 AND s.expires_at > NOW() AND s.revoked_at IS NULL AND u.deleted_at IS NULL`

const resolveStationOwnerQuery = `SELECT u.uuid FROM stations.stations st JOIN auth.users u ON st.user_id = u.user_id
	WHERE (st.uuid::text = $1 OR st.name = $1) AND st.deleted_at IS NULL`

const selectStationsBase = `SELECT st.uuid, st.name, ST_X(st.location::geometry) AS lon, ST_Y(st.location::geometry) AS lat, ST_Z(st.location::geometry) AS altitude
	FROM stations.stations st WHERE st.deleted_at IS NULL`

// insertStationQuery atomically enforces the per-user station quota: the
// INSERT's SELECT only produces a row when the owner's active station
// count is still under max_stations (or max_stations is unlimited).
const insertStationQuery = `WITH quota AS (
	SELECT u.user_id, u.max_stations,
	       (SELECT COUNT(*) FROM stations.stations s WHERE s.user_id = u.user_id AND s.deleted_at IS NULL) AS active
	FROM auth.users u WHERE u.uuid::text = $1 AND u.deleted_at IS NULL
)
INSERT INTO stations.stations (uuid, user_id, name, location)
SELECT $2, quota.user_id, $3, ST_SetSRID(ST_MakePoint($4, $5, $6), 4326)
FROM quota
WHERE quota.max_stations = -1 OR quota.active < quota.max_stations`

const patchStationQuery = `UPDATE stations.stations SET
	name = COALESCE($1, name),
	deleted_at = CASE WHEN $2 THEN NOW() ELSE deleted_at END
	WHERE (uuid::text = $3 OR name = $3) AND deleted_at IS NULL`

// StationsCreate implements stations_create: the caller's user UUID is
// resolved from their session token, then a single INSERT…SELECT enforces
// the quota atomically. Zero rows inserted means the quota was exhausted.
func (s *Services) StationsCreate(ctx context.Context, name string, lon, lat, alt float64, auth AuthMaterial) Result {
	if !validate.Name(name) {
		return outcome(InvalidParams)
	}
	hash, err := credential.HashToken(auth.SessionToken)
	if err != nil {
		return outcome(AuthError)
	}

	h := s.pool.Acquire()
	defer h.Release()

	var ownerUUID string
	if err := h.QueryRowContext(ctx, resolveUserByTokenQuery, hash).Scan(&ownerUUID); err != nil {
		return outcome(AuthError)
	}

	id := uuid.NewString()
	res, err := h.ExecContext(ctx, insertStationQuery, ownerUUID, id, name, lon, lat, alt)
	if err != nil {
		return outcome(DBError)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return outcome(DBError)
	}
	if n == 0 {
		return outcome(Forbidden)
	}

	rows, err := h.QueryContext(ctx, selectStationsBase+" AND st.uuid::text = $1", id)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	return ok(body)
}

// StationsList implements stations_list: public, excludes soft-deleted
// stations. Per the preserved open-question behavior, a stationRef that
// matches no row yields Forbidden rather than NotFound — the service
// cannot distinguish "does not exist" from "exists but denied" here.
func (s *Services) StationsList(ctx context.Context, stationRef *string) Result {
	h := s.pool.Acquire()
	defer h.Release()

	if stationRef == nil {
		rows, err := h.QueryContext(ctx, selectStationsBase+" ORDER BY st.name")
		if err != nil {
			return outcome(DBError)
		}
		body, err := validate.RowsToJSON(rows, false)
		if err != nil {
			return outcome(JSONError)
		}
		return ok(body)
	}

	rows, err := h.QueryContext(ctx, selectStationsBase+" AND (st.uuid::text = $1 OR st.name = $1)", *stationRef)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	if emptyArray(body) {
		return outcome(Forbidden)
	}
	return ok(body)
}

// StationsPatch implements the supplemental stations_patch operation:
// owner or admin may rename a station or soft-delete it. Unlike
// users_patch this never revokes sessions — a station is not auth
// material.
func (s *Services) StationsPatch(ctx context.Context, stationRef string, name *string, delete bool, auth AuthMaterial) Result {
	if name != nil && !validate.Name(*name) {
		return outcome(InvalidParams)
	}

	var ownerUUID string
	h := s.pool.Acquire()
	err := h.QueryRowContext(ctx, resolveStationOwnerQuery, stationRef).Scan(&ownerUUID)
	h.Release()
	if err != nil {
		return outcome(NotFound)
	}
	if !s.cred.ValidateSession(ctx, &ownerUUID, auth.SessionToken) {
		return outcome(AuthError)
	}

	h = s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, patchStationQuery, name, delete, stationRef)
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
	if delete {
		return Result{Outcome: OK}
	}

	rows, err := h.QueryContext(ctx, selectStationsBase+" AND (st.uuid::text = $1 OR st.name = $1)", stationRef)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	return ok(body)
}
