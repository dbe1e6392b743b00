// Package field holds the authoritative field polygon: import and
// validation of a boundary from any source geometry, centering about its
// own bounds, and the invariants every downstream package assumes hold
// (closed rings, minimum/maximum area, validity, interior rings preserved
// as obstacles).
package field
