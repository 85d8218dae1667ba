package component

import "github.com/milk9111/parrot/common"

// Transform is an entity's world position and horizontal facing. Yaw is in
// radians, measured from +Z toward +X.
type Transform struct {
	Position common.Vec3
	Yaw      float64
}

var TransformComponent = NewComponent[Transform]()
