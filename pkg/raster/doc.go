// Package raster builds a boolean walkability grid: a flat row-major
// open/blocked map over a field's bounds, plus conversions between world
// coordinates and grid cells. It is unrelated to pkg/carve's image-to-vector
// raster intent — this package goes the other direction, field geometry to
// a grid, for the pathfinder and the emergency-coverage and flow-simulation
// analyses that walk it.
package raster
