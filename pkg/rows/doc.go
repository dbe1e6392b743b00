// Package rows generates the standing-corn-row multi-polyline for a
// field: a headland inset, a rotate/scan/union/rotate-back/clip pipeline
// that lays a regular family of parallel lines across the working area at
// a fixed planting direction and spacing (§4.4).
package rows
