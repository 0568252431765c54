// Package pool implements a fixed-size database connection pool with
// blocking acquisition, mirroring a hand-rolled mutex/condition-variable
// pool rather than relying on database/sql's own lazy pooling.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Config holds the parameters required to open the pool's connections.
type Config struct {
	// DSN is the lib/pq connection string (e.g. "host=... port=... dbname=... user=... password=...").
	DSN string

	// Size is the number of connections to open. Non-positive values clamp to 1.
	Size int

	Logger *zap.Logger
}

// slot pairs one persistent connection with its busy flag.
type slot struct {
	conn *sql.Conn
	busy bool
}

// Pool is a bounded set of reusable database sessions. All connections are
// opened once at construction time; Acquire blocks until one is free and
// Release returns it and wakes at most one waiter. The busy-flag vector is
// guarded by a single mutex; waiters share one condition variable, so
// fairness is whatever the runtime's condition-variable wakeup order gives —
// no explicit FIFO queue is maintained.
type Pool struct {
	mu    sync.Mutex
	cond  *sync.Cond
	slots []slot
	db    *sql.DB
	log   *zap.Logger
}

// New opens Config.Size connections against the database described by DSN
// and returns a ready-to-use Pool. If any connection fails to open, the
// connections already opened are closed before returning the error — the
// pool never exists in a partially-initialized state.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	size := cfg.Size
	if size <= 0 {
		size = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pool: opening database: %w", err)
	}
	// database/sql's own pool is not the capacity authority here — our
	// slot array is. Leaving MaxOpenConns unset lets us pin exactly `size`
	// *sql.Conn values without fighting the stdlib pool for them.

	slots := make([]slot, 0, size)
	for i := 0; i < size; i++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			for _, s := range slots {
				_ = s.conn.Close()
			}
			_ = db.Close()
			return nil, fmt.Errorf("pool: opening connection %d/%d: %w", i+1, size, err)
		}
		slots = append(slots, slot{conn: conn})
	}

	p := &Pool{slots: slots, db: db, log: logger.Named("pool")}
	p.cond = sync.NewCond(&p.mu)

	p.log.Info("connection pool initialized", zap.Int("size", size))
	return p, nil
}

// Size returns the fixed number of connections managed by the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// Busy returns the number of currently checked-out connections.
func (p *Pool) Busy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.slots {
		if s.busy {
			n++
		}
	}
	return n
}

// Acquire blocks until a connection is free, claims it, and returns a Handle.
// Scan policy is a linear sweep from index 0: the first free slot found is
// claimed. If none is free the caller waits on the pool's condition
// variable and re-scans on wake, which also absorbs spurious wakeups.
// Acquire cannot fail once the pool is initialized — cancellation is not
// part of its contract.
func (p *Pool) Acquire() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		for i := range p.slots {
			if !p.slots[i].busy {
				p.slots[i].busy = true
				return &Handle{pool: p, conn: p.slots[i].conn}
			}
		}
		p.cond.Wait()
	}
}

// release clears the busy flag on the slot holding conn and signals at most
// one waiter. It is invoked by Handle.Release and is idempotent-unsafe by
// design — callers must release each handle exactly once.
func (p *Pool) release(conn *sql.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if p.slots[i].conn == conn {
			p.slots[i].busy = false
			break
		}
	}
	p.cond.Signal()
}

// Close closes every connection and the underlying *sql.DB. No health
// checking or recycling happens during the pool's lifetime — a dead
// connection simply surfaces as a query error to whichever caller is
// holding it, and that caller must still release it.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, s := range p.slots {
		if err := s.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := p.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	p.cond.Broadcast()
	return firstErr
}

// Handle is a borrowed connection. The holder is the exclusive user of the
// underlying connection until Release is called.
type Handle struct {
	pool *Pool
	conn *sql.Conn
}

// Release returns the connection to the pool and wakes at most one waiter.
// It must be called exactly once per Acquire, on every exit path —
// including error paths — so the pool cannot leak.
func (h *Handle) Release() {
	h.pool.release(h.conn)
}

// QueryContext runs a query returning rows on the borrowed connection.
func (h *Handle) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return h.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a query expected to return at most one row.
func (h *Handle) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return h.conn.QueryRowContext(ctx, query, args...)
}

// ExecContext runs a statement that does not return rows.
func (h *Handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.conn.ExecContext(ctx, query, args...)
}
