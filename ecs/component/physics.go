package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration. The
// body lives on the XZ plane; Height extends the collider upward from the
// transform's Y.
type PhysicsBody struct {
	Body      *cp.Body
	Radius    float64
	Height    float64
	Mass      float64
	Kinematic bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
