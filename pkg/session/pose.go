package session

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// Pose is a GPS-guidance sample converted to the session's centered
// projected frame, per §6's "pose updates" input.
type Pose struct {
	X, Y     float64
	Accuracy float64 // metres
	Heading  float64 // degrees, 0 = north
}

// PoseTracker is the real-time GPS guidance tracker §6/§12 specifies at
// interface level only: the engine never implements a concrete GPS
// hardware integration, matching core-engine/gps_guidance/router.py's role
// as an external collaborator.
type PoseTracker interface {
	// UpdatePose records a new pose sample.
	UpdatePose(p Pose)
	// NearestOnPath returns the point on the current carved-path list
	// nearest to the most recent pose, or ok=false if there is no carved
	// path to track against.
	NearestOnPath() (point orb.Point, ok bool)
}

// Kernel exposes the session's geometry kernel for callers (debug preview
// rendering, export collaborators) that need to perform their own
// geometric queries against session snapshots.
func (s *Session) Kernel() *geomkernel.Kernel {
	return s.k
}
