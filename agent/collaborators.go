package agent

import (
	"time"

	"github.com/milk9111/parrot/common"
)

// Body is the agent's own transform.
type Body interface {
	Position() common.Vec3
	// Forward is the horizontal facing direction, unit length.
	Forward() common.Vec3
	LookAt(point common.Vec3)
}

// Target is the sensed entity. ok is false once the target has been removed
// from the simulation.
type Target interface {
	Position() (pos common.Vec3, ok bool)
}

// Navigator steers the agent toward a destination over subsequent ticks. A
// new destination replaces the previous one.
type Navigator interface {
	SetDestination(point common.Vec3)
}

type SpatialQuery interface {
	IsWithinRadius(origin common.Vec3, radius float64, filter Filter) bool
}

type GroundProbe interface {
	RaycastDown(from common.Vec3, filter Filter) bool
}

// ProjectileHandle identifies a spawned projectile. The controller never
// reads it back.
type ProjectileHandle uint64

type ProjectileSpawner interface {
	Spawn(at, forwardImpulse, upImpulse common.Vec3) ProjectileHandle
}

// TimerHandle cancels a scheduled callback. Cancel after the callback has
// fired is a no-op.
type TimerHandle interface {
	Cancel()
}

// Scheduler runs fn once, on the simulation loop, after delay has elapsed.
type Scheduler interface {
	After(delay time.Duration, fn func()) TimerHandle
}

// Rand is satisfied by *math/rand.Rand.
type Rand interface {
	Float64() float64
}
