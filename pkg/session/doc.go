// Package session is the engine's single entry point: an explicit session
// handle, created by the caller and passed through every operation,
// wrapping the geometry kernel and every derived-state package (field,
// rows, carve, constraints, livevalidate, raster, pathfind, metrics,
// emergency, flow, project) behind a request/response façade, per §5's
// "re-architect as an explicit session handle" design note.
//
// Every mutating method is atomic: it builds a new state value and swaps
// it into the Session only on success, leaving the prior state intact on
// failure (§5, §7). The Session itself is not safe for concurrent use by
// multiple goroutines — callers running independent designs in parallel
// create independent Sessions, matching §5's "re-entrant on independent
// sessions, not concurrent-safe within one".
package session
