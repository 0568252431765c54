package credential

import (
	"context"

	"go.uber.org/zap"

	"github.com/ljn0099/picoweather/internal/pool"
)

// validateSessionQuery is frozen per the service's external SQL contract:
// it succeeds iff the session is active and either the token belongs to an
// admin (when userRef is NULL) or userRef matches the session's user by
// UUID or username, or the authenticated user is an admin.
const validateSessionQuery = `
SELECT 1
FROM auth.user_sessions s
JOIN auth.users u ON s.user_id = u.user_id
WHERE s.session_token = $1
  AND s.expires_at > NOW()
  AND s.revoked_at IS NULL
  AND u.deleted_at IS NULL
  AND (
    ($2::text IS NULL AND u.is_admin)
    OR ($2::text IS NOT NULL AND (u.is_admin OR u.uuid::text = $2 OR u.username = $2))
  )`

// validatePasswordQuery fetches the stored password hash for a user
// referenced by UUID or username, excluding soft-deleted accounts.
const validatePasswordQuery = `
SELECT password_hash
FROM auth.users
WHERE (uuid::text = $1 OR username = $1)
  AND deleted_at IS NULL`

// Engine is the credential engine: session/password validation backed by
// the shared connection pool. Token minting and password hashing (token.go,
// password.go) are stateless and do not need an Engine.
type Engine struct {
	pool *pool.Pool
	log  *zap.Logger
}

// New returns an Engine bound to p.
func New(p *pool.Pool, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{pool: p, log: logger.Named("credential")}
}

// ValidateSession reports whether tokenB64 identifies an active session
// scoped to userRef (nil means "admin scope"). Malformed base64, absent
// sessions, wrong passwords, and expired/revoked sessions all collapse to
// false — validation never returns an error, only a boolean.
func (e *Engine) ValidateSession(ctx context.Context, userRef *string, tokenB64 string) bool {
	hash, err := HashToken(tokenB64)
	if err != nil {
		return false
	}

	h := e.pool.Acquire()
	defer h.Release()

	var one int
	row := h.QueryRowContext(ctx, validateSessionQuery, hash, userRef)
	return row.Scan(&one) == nil
}

// ValidateAdminSession reports whether tokenB64 identifies an active
// session belonging to an admin user.
func (e *Engine) ValidateAdminSession(ctx context.Context, tokenB64 string) bool {
	return e.ValidateSession(ctx, nil, tokenB64)
}

// ValidatePassword reports whether plaintext matches the stored password
// hash for the user referenced by UUID or username.
func (e *Engine) ValidatePassword(ctx context.Context, userRef, plaintext string) bool {
	h := e.pool.Acquire()
	defer h.Release()

	var hash string
	row := h.QueryRowContext(ctx, validatePasswordQuery, userRef)
	if err := row.Scan(&hash); err != nil {
		return false
	}
	return VerifyPassword(plaintext, hash)
}
