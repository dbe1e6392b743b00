// Package carve implements the carve engine (§4.5): turning a design
// intent — a stroke, a closed polygon, a rendered text glyph, a
// vectorized raster image, or a parsed SVG path — into an eraser
// geometry, applying it to the standing-row set, and tracking both the
// merged carved area and the per-element polygon list the merged area
// would otherwise destroy (the hole in a letter "O" has no representation
// once unioned into the whole carved region).
//
// Design intents are a tagged union: one concrete type per kind
// implementing the Intent interface, rather than the source's
// stringly-typed dictionaries.
package carve
