// Package emergency computes emergency-exit coverage over the walkability
// grid and suggests additional boundary placements, per §4.11.
package emergency
