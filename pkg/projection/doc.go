// Package projection handles the engine's one geographic-to-planar boundary:
// detecting a UTM zone from a WGS84 centroid, reprojecting geometry into
// that zone, and centering the projected result about its own bounds so
// every downstream package (rows, carve, constraints, pathfind) works in
// small, origin-relative coordinates. The centering offset is recorded so
// geometry can be un-centered and reprojected back to WGS84 on export.
//
// Zone detection and EPSG arithmetic are plain math (§4.2 specifies the
// formulas exactly); the forward/inverse UTM projection itself is delegated
// to github.com/im7mortal/UTM.
package projection
