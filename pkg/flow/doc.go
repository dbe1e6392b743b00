// Package flow runs a deterministic, agent-based visitor simulation over
// the walkability grid to produce a heatmap, bottleneck report, and
// completion statistics, per §4.12.
package flow
