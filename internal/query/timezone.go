package query

import (
	"context"
	"fmt"
	"time"

	"github.com/ljn0099/picoweather/internal/pool"
)

// Equivalent walks the [start, end] range one day at a time and reports
// whether the named zones share the same UTC offset on every sampled day.
// When they do, the static summary tables (always computed in the
// server's configured default timezone) can answer the query directly; otherwise the
// result must be recomputed per-bucket in the requester's zone on the
// dynamic path.
//
// Sampling at day granularity misses a DST transition that falls strictly
// between two samples on a sub-day boundary; this mirrors the limitation
// already accepted for the static/dynamic decision.
func Equivalent(tzA, tzB string, start, end time.Time) (bool, error) {
	locA, err := time.LoadLocation(tzA)
	if err != nil {
		return false, fmt.Errorf("query: loading zone %q: %w", tzA, err)
	}
	locB, err := time.LoadLocation(tzB)
	if err != nil {
		return false, fmt.Errorf("query: loading zone %q: %w", tzB, err)
	}

	if start.After(end) {
		start, end = end, start
	}

	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		_, offA := t.In(locA).Zone()
		_, offB := t.In(locB).Zone()
		if offA != offB {
			return false, nil
		}
	}
	return true, nil
}

// DecideStatic reports whether the static (pre-aggregated) path may answer
// a query for the given granularity, requested zone and default (server)
// zone over [start, end]. Raw granularity always uses the static path —
// there is no raw-table dynamic equivalent to fall back to.
func DecideStatic(g Granularity, requestedTZ, defaultTZ string, start, end time.Time) (bool, error) {
	if g == Raw {
		return true, nil
	}
	if requestedTZ == defaultTZ {
		return true, nil
	}
	return Equivalent(requestedTZ, defaultTZ, start, end)
}

// ResetTimeZone sets the session timezone on the borrowed connection ahead
// of issuing a weather query on either path, escaping tz via quote_literal rather
// than interpolating it directly (SET does not accept a bind parameter).
// If the escaping round-trip itself fails, the reset is silently skipped
// and the query proceeds in whatever zone the connection already had —
// a known, accepted gap rather than turning a query failure into an outage.
func ResetTimeZone(ctx context.Context, h *pool.Handle, tz string) error {
	var quoted string
	if err := h.QueryRowContext(ctx, "SELECT quote_literal($1)", tz).Scan(&quoted); err != nil {
		return nil
	}
	_, err := h.ExecContext(ctx, "SET TIME ZONE "+quoted)
	return err
}
