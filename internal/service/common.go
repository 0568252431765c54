package service

import (
	"go.uber.org/zap"

	"github.com/ljn0099/picoweather/internal/credential"
	"github.com/ljn0099/picoweather/internal/pool"
)

// AuthMaterial is the request-scoped bundle of credentials and peer
// metadata every service operation needs: at most one of SessionToken or
// APIKey is meaningful for a given endpoint, PeerIP/UserAgent are recorded
// on session writes.
type AuthMaterial struct {
	SessionToken string
	APIKey       string
	PeerIP       string
	UserAgent    string
}

// Services wires the resource services to the connection pool and the
// credential engine. One Services value is constructed at startup and
// shared across every request.
type Services struct {
	pool      *pool.Pool
	cred      *credential.Engine
	log       *zap.Logger
	defaultTZ string
}

// New returns a Services bound to p and cred, resolving timezone
// equivalence against defaultTZ for weather-data queries.
func New(p *pool.Pool, cred *credential.Engine, logger *zap.Logger, defaultTZ string) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{pool: p, cred: cred, log: logger.Named("service"), defaultTZ: defaultTZ}
}

// emptyArray reports whether a rowset_to_json body is the empty-array
// encoding, i.e. the lookup matched zero rows.
func emptyArray(body []byte) bool {
	return string(body) == "[]"
}
