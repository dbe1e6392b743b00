// Package pathfind runs A* over a raster.Grid, with nearest-open-cell
// recovery when a start or goal point falls inside a blocked cell.
package pathfind
