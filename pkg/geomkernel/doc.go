// Package geomkernel provides the 2-D geometry primitives the rest of the
// engine is built on: boolean operations (union, intersection, difference),
// arc-aware buffering, validity repair, affine transforms, and curve
// densification for export-bound geometry.
//
// Boolean operations and buffering are delegated to GEOS through
// github.com/twpayne/go-geos; lightweight point/ring math (centroid,
// rotate, translate) and WKT encoding use github.com/paulmach/orb. Callers
// exchange geometry as WKT strings, matching the wire format the rest of
// the engine (carved-area snapshots, per-element polygons) already uses.
package geomkernel
