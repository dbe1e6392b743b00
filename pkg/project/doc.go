// Package project serializes and restores a session's design state as a
// versioned, portable `.cmz` JSON document, per §4.13.
package project
