// Package constraints checks a generated set of rows against a field for
// geometric violations: paths too narrow to drive, standing walls too thin
// to survive, rows too close to the field edge, rows too close to each
// other, and dead-end spurs too long to be worth the drive.
package constraints
