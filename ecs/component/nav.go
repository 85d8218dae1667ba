package component

import "github.com/milk9111/parrot/common"

// PathNode represents a world-space point along a path on the ground plane.
type PathNode struct {
	X float64
	Z float64
}

// NavAgent stores a navigation destination, its grid path and steering
// settings.
type NavAgent struct {
	Destination    common.Vec3
	HasDestination bool
	// Dirty is set when the destination changes and cleared on the next
	// navigation update.
	Dirty bool

	Speed        float64
	GridSize     float64
	RepathFrames int
	FrameCounter int

	LastGoalX int
	LastGoalZ int
	Path      []PathNode
	PathIndex int
	Visited   []PathNode
}

var NavAgentComponent = NewComponent[NavAgent]()

// SetDestination replaces the destination. Repeating the current destination
// is a no-op.
func (n *NavAgent) SetDestination(p common.Vec3) {
	if n.HasDestination && n.Destination == p {
		return
	}
	n.Destination = p
	n.HasDestination = true
	n.Dirty = true
}

// Arrived reports whether the path has been fully walked.
func (n *NavAgent) Arrived() bool {
	return n.PathIndex >= len(n.Path)
}
