// Package metrics computes maze complexity metrics and a composite
// difficulty score from a set of carved rows and a field boundary.
package metrics
