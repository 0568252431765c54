package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ljn0099/picoweather/internal/credential"
	"github.com/ljn0099/picoweather/internal/validate"
)

const selectUsersBase = `SELECT uuid, username, email, created_at, max_stations, is_admin FROM auth.users WHERE deleted_at IS NULL`

const insertUserQuery = `INSERT INTO auth.users (uuid, username, email, password_hash) VALUES ($1, $2, $3, $4)`

const patchUserQuery = `UPDATE auth.users SET
	username = COALESCE($1, username),
	email = COALESCE($2, email),
	password_hash = COALESCE($3, password_hash),
	max_stations = COALESCE($4, max_stations),
	is_admin = COALESCE($5, is_admin)
	WHERE (uuid::text = $6 OR username = $6) AND deleted_at IS NULL`

const revokeUserSessionsQuery = `UPDATE auth.user_sessions SET revoked_at = NOW()
	WHERE user_id = (SELECT user_id FROM auth.users WHERE uuid::text = $1 OR username = $1)
	  AND revoked_at IS NULL`

const softDeleteUserQuery = `UPDATE auth.users SET deleted_at = NOW()
	WHERE (uuid::text = $1 OR username = $1) AND deleted_at IS NULL`

// UsersList implements users_list. A nil userRef lists every user and
// requires admin scope; per the preserved open-question behavior, a
// non-admin caller listing with no userRef gets NotFound rather than
// AuthError.
func (s *Services) UsersList(ctx context.Context, userRef *string, auth AuthMaterial) Result {
	if userRef == nil {
		if !s.cred.ValidateAdminSession(ctx, auth.SessionToken) {
			return outcome(NotFound)
		}
	} else if !s.cred.ValidateSession(ctx, userRef, auth.SessionToken) {
		return outcome(AuthError)
	}

	h := s.pool.Acquire()
	defer h.Release()

	if userRef == nil {
		rows, err := h.QueryContext(ctx, selectUsersBase+" ORDER BY created_at")
		if err != nil {
			return outcome(DBError)
		}
		body, err := validate.RowsToJSON(rows, false)
		if err != nil {
			return outcome(JSONError)
		}
		return ok(body)
	}

	rows, err := h.QueryContext(ctx, selectUsersBase+" AND (uuid::text = $1 OR username = $1)", *userRef)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	if emptyArray(body) {
		return outcome(NotFound)
	}
	return ok(body)
}

// UsersCreate implements users_create.
func (s *Services) UsersCreate(ctx context.Context, username, email, password string) Result {
	if !validate.Name(username) || !validate.Email(email) {
		return outcome(InvalidParams)
	}

	hash, err := credential.HashPassword(password)
	if err != nil {
		return outcome(MemoryError)
	}

	id := uuid.NewString()

	h := s.pool.Acquire()
	defer h.Release()

	if _, err := h.ExecContext(ctx, insertUserQuery, id, username, email, hash); err != nil {
		return outcome(DBError)
	}

	rows, err := h.QueryContext(ctx, selectUsersBase+" AND uuid = $1", id)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	return ok(body)
}

// UsersDelete implements users_delete: a soft-delete timestamping
// deleted_at, visible thereafter as NotFound from every lookup.
func (s *Services) UsersDelete(ctx context.Context, userRef string, auth AuthMaterial) Result {
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}

	h := s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, softDeleteUserQuery, userRef)
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

// UsersPatchParams is the optional-field PATCH body for users_patch; a nil
// field is left untouched via SQL COALESCE.
type UsersPatchParams struct {
	Username    *string
	Email       *string
	MaxStations *int
	IsAdmin     *bool
	OldPassword *string
	NewPassword *string
}

// UsersPatch implements users_patch: self-scope covers username/email/
// password, admin-scope is required to touch MaxStations or IsAdmin, and
// a password change requires the current password to validate. Every
// successful patch revokes the user's active sessions.
func (s *Services) UsersPatch(ctx context.Context, userRef string, p UsersPatchParams, auth AuthMaterial) Result {
	if !s.cred.ValidateSession(ctx, &userRef, auth.SessionToken) {
		return outcome(AuthError)
	}
	if (p.MaxStations != nil || p.IsAdmin != nil) && !s.cred.ValidateAdminSession(ctx, auth.SessionToken) {
		return outcome(Forbidden)
	}

	var newHash *string
	if p.NewPassword != nil || p.OldPassword != nil {
		if p.NewPassword == nil || p.OldPassword == nil {
			return outcome(InvalidParams)
		}
		if !s.cred.ValidatePassword(ctx, userRef, *p.OldPassword) {
			return outcome(AuthError)
		}
		hash, err := credential.HashPassword(*p.NewPassword)
		if err != nil {
			return outcome(MemoryError)
		}
		newHash = &hash
	}
	if p.Username != nil && !validate.Name(*p.Username) {
		return outcome(InvalidParams)
	}
	if p.Email != nil && !validate.Email(*p.Email) {
		return outcome(InvalidParams)
	}

	h := s.pool.Acquire()
	defer h.Release()

	res, err := h.ExecContext(ctx, patchUserQuery, p.Username, p.Email, newHash, p.MaxStations, p.IsAdmin, userRef)
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

	// A non-UUID userRef matched by username; after a rename only the new
	// username still identifies the user.
	ref := userRef
	if p.Username != nil && !validate.UUID(userRef) {
		ref = *p.Username
	}

	if _, err := h.ExecContext(ctx, revokeUserSessionsQuery, ref); err != nil {
		return outcome(DBError)
	}

	rows, err := h.QueryContext(ctx, selectUsersBase+" AND (uuid::text = $1 OR username = $1)", ref)
	if err != nil {
		return outcome(DBError)
	}
	body, err := validate.RowsToJSON(rows, true)
	if err != nil {
		return outcome(JSONError)
	}
	return ok(body)
}
