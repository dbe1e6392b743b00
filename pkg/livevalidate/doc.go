// Package livevalidate runs the fast, pre-carve checks §4.7 requires:
// pending design elements against one another, against already-carved
// state, and against the field edge. It also offers a best-effort
// auto-fix pass that translates elements to cure the violations it finds.
package livevalidate
