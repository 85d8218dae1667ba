package ecs

import (
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/parrot/common"
)

const (
	collisionTypeGround cp.CollisionType = iota + 1
	collisionTypeTarget
	collisionTypeProjectile
)

// queryCategory is reserved for spatial queries. Shapes that should be
// visible to queries include it in their mask; no body ever carries it as a
// category, so it never causes a physical collision.
const queryCategory = uint(common.QueryLayer)

const (
	DefaultProbeDepth = 4.0
	groundEpsilon     = 1e-6
)

// PhysicsWorld owns the Chipmunk space. The space is the top-down XZ plane:
// cp X is world X, cp Y is world Z. Elevation is tracked per shape.
type PhysicsWorld struct {
	space         *cp.Space
	handlersReady bool
	probeDepth    float64
	logger        *log.Logger

	shapes  map[*cp.Shape]*shapeInfo
	bodies  map[Entity]*cp.Body
	statics map[Entity][]*cp.Shape
	hits    []ProjectileHit
}

type shapeInfo struct {
	entity    Entity
	elevation float64
	height    float64
	radius    float64
}

// ProjectileHit is recorded when a projectile overlaps a target on the
// plane and in elevation.
type ProjectileHit struct {
	Projectile Entity
	Target     Entity
}

// NewPhysicsWorld creates an empty top-down space.
func NewPhysicsWorld(probeDepth float64, logger *log.Logger) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})

	if probeDepth <= 0 {
		probeDepth = DefaultProbeDepth
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "physics"})
	}

	pw := &PhysicsWorld{
		space:      space,
		probeDepth: probeDepth,
		logger:     logger,
		shapes:     make(map[*cp.Shape]*shapeInfo),
		bodies:     make(map[Entity]*cp.Body),
		statics:    make(map[Entity][]*cp.Shape),
	}
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func planar(v common.Vec3) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Z}
}

func queryFilter(mask uint32) cp.ShapeFilter {
	return cp.ShapeFilter{Group: cp.NO_GROUP, Categories: queryCategory, Mask: uint(mask)}
}

// AddGround registers a walkable rectangle at an elevation. Ground never
// collides; it is only visible to RaycastDown.
func (pw *PhysicsWorld) AddGround(e Entity, minX, minZ, maxX, maxZ, elevation float64, category uint32) *cp.Shape {
	if pw == nil || pw.space == nil {
		return nil
	}
	bb := cp.BB{L: math.Min(minX, maxX), B: math.Min(minZ, maxZ), R: math.Max(minX, maxX), T: math.Max(minZ, maxZ)}
	shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
	shape.SetCollisionType(collisionTypeGround)
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(category), Mask: queryCategory})
	pw.space.AddShape(shape)
	pw.shapes[shape] = &shapeInfo{entity: e, elevation: elevation}
	pw.statics[e] = append(pw.statics[e], shape)
	return shape
}

// AddTarget creates a kinematic circle that queries and projectiles can
// find.
func (pw *PhysicsWorld) AddTarget(e Entity, pos common.Vec3, radius, height float64, category, projectileCategory uint32) *cp.Body {
	if pw == nil || pw.space == nil {
		return nil
	}
	body := cp.NewKinematicBody()
	body.SetPosition(planar(pos))
	body.UserData = e
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetCollisionType(collisionTypeTarget)
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(category), Mask: queryCategory | uint(projectileCategory)})
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.shapes[shape] = &shapeInfo{entity: e, elevation: pos.Y, height: height, radius: radius}
	pw.bodies[e] = body
	return body
}

// AddProjectile creates a dynamic sensor circle and applies the planar part
// of the impulse.
func (pw *PhysicsWorld) AddProjectile(e Entity, pos common.Vec3, impulse common.Vec3, mass, radius float64, category, targetCategory uint32) *cp.Body {
	if pw == nil || pw.space == nil {
		return nil
	}
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(planar(pos))
	body.UserData = e
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeProjectile)
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(category), Mask: uint(targetCategory)})
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	body.ApplyImpulseAtLocalPoint(planar(impulse), cp.Vector{})
	pw.shapes[shape] = &shapeInfo{entity: e, elevation: pos.Y, radius: radius}
	pw.bodies[e] = body
	return body
}

// Body returns the body registered for e.
func (pw *PhysicsWorld) Body(e Entity) (*cp.Body, bool) {
	if pw == nil {
		return nil, false
	}
	b, ok := pw.bodies[e]
	return b, ok
}

// SyncBody moves a kinematic body to pos. Moved shapes are removed and
// re-added so the spatial index is current for queries made before the next
// Step. Must not be called during Step.
func (pw *PhysicsWorld) SyncBody(e Entity, pos common.Vec3) {
	body, ok := pw.Body(e)
	if !ok {
		return
	}
	moved := body.Position() != planar(pos)
	body.SetPosition(planar(pos))

	shapes := make([]*cp.Shape, 0, 1)
	body.EachShape(func(s *cp.Shape) { shapes = append(shapes, s) })
	for _, s := range shapes {
		if info := pw.shapes[s]; info != nil {
			info.elevation = pos.Y
		}
		if moved {
			pw.space.RemoveShape(s)
			pw.space.AddShape(s)
		}
	}
}

// SetElevation updates the tracked elevation of every shape of e.
func (pw *PhysicsWorld) SetElevation(e Entity, y float64) {
	body, ok := pw.Body(e)
	if !ok {
		return
	}
	body.EachShape(func(s *cp.Shape) {
		if info := pw.shapes[s]; info != nil {
			info.elevation = y
		}
	})
}

// RemoveBody drops e's body and shapes, including static ground shapes.
// Must not be called during Step.
func (pw *PhysicsWorld) RemoveBody(e Entity) {
	if pw == nil {
		return
	}
	for _, s := range pw.statics[e] {
		pw.space.RemoveShape(s)
		delete(pw.shapes, s)
	}
	delete(pw.statics, e)

	body, ok := pw.Body(e)
	if !ok {
		return
	}
	shapes := make([]*cp.Shape, 0, 1)
	body.EachShape(func(s *cp.Shape) { shapes = append(shapes, s) })
	for _, s := range shapes {
		pw.space.RemoveShape(s)
		delete(pw.shapes, s)
	}
	pw.space.RemoveBody(body)
	delete(pw.bodies, e)
	pw.logger.Debug("body removed", "entity", e, "shapes", len(shapes))
}

// Step advances the simulation and returns the projectile hits recorded
// during it.
func (pw *PhysicsWorld) Step(dt float64) []ProjectileHit {
	if pw == nil || pw.space == nil || dt <= 0 {
		return nil
	}
	pw.hits = pw.hits[:0]
	pw.space.Step(dt)
	if len(pw.hits) == 0 {
		return nil
	}
	out := make([]ProjectileHit, len(pw.hits))
	copy(out, pw.hits)
	return out
}

// IsWithinRadius reports whether any shape matching mask lies within radius
// of origin in 3D, measuring from the shape's surface on the plane.
func (pw *PhysicsWorld) IsWithinRadius(origin common.Vec3, radius float64, mask uint32) bool {
	if pw == nil || pw.space == nil || radius <= 0 {
		return false
	}
	found := false
	pw.eachNear(planar(origin), radius+groundEpsilon, mask, func(shape *cp.Shape, info *shapeInfo, distance float64) {
		if found {
			return
		}
		d := math.Max(distance, 0)
		dy := verticalGap(origin.Y, info.elevation, info.height)
		if math.Hypot(d, dy) <= radius {
			found = true
		}
	})
	return found
}

// RaycastDown casts straight down from `from` for the probe depth and
// reports whether it meets ground matching mask.
func (pw *PhysicsWorld) RaycastDown(from common.Vec3, mask uint32) bool {
	if pw == nil || pw.space == nil {
		return false
	}
	hit := false
	pw.eachGround(planar(from), mask, func(info *shapeInfo) {
		if info.elevation <= from.Y && info.elevation >= from.Y-pw.probeDepth {
			hit = true
		}
	})
	return hit
}

// GroundElevation returns the highest ground matching mask under the planar
// position of p, regardless of p's elevation.
func (pw *PhysicsWorld) GroundElevation(p common.Vec3, mask uint32) (float64, bool) {
	if pw == nil || pw.space == nil {
		return 0, false
	}
	best := math.Inf(-1)
	pw.eachGround(planar(p), mask, func(info *shapeInfo) {
		best = math.Max(best, info.elevation)
	})
	if math.IsInf(best, -1) {
		return 0, false
	}
	return best, true
}

// eachNear calls fn for every tracked shape matching mask whose surface is
// within maxDistance of p. distance is negative inside the shape.
func (pw *PhysicsWorld) eachNear(p cp.Vector, maxDistance float64, mask uint32, fn func(shape *cp.Shape, info *shapeInfo, distance float64)) {
	pw.space.BBQuery(cp.NewBBForCircle(p, maxDistance), queryFilter(mask), func(shape *cp.Shape, _ interface{}) {
		info := pw.shapes[shape]
		if info == nil {
			return
		}
		q := shape.PointQuery(p)
		if q.Distance > maxDistance {
			return
		}
		fn(shape, info, q.Distance)
	}, nil)
}

// eachGround calls fn for every static ground shape matching mask that
// contains p.
func (pw *PhysicsWorld) eachGround(p cp.Vector, mask uint32, fn func(info *shapeInfo)) {
	pw.eachNear(p, groundEpsilon, mask, func(shape *cp.Shape, info *shapeInfo, _ float64) {
		if shape.Body() != pw.space.StaticBody {
			return
		}
		fn(info)
	})
}

// verticalGap is the distance from y to the span [base, base+height].
func verticalGap(y, base, height float64) float64 {
	switch {
	case y < base:
		return base - y
	case y > base+height:
		return y - (base + height)
	default:
		return 0
	}
}

func (pw *PhysicsWorld) setupHandlers() {
	if pw == nil || pw.handlersReady || pw.space == nil {
		return
	}

	// Begin covers the first contact; PreSolve keeps checking while the
	// shapes overlap so a projectile dropping onto a target still hits.
	hitHandler := pw.space.NewCollisionHandler(collisionTypeProjectile, collisionTypeTarget)
	hitHandler.UserData = pw
	hitHandler.BeginFunc = recordHit
	hitHandler.PreSolveFunc = recordHit

	pw.handlersReady = true
}

func recordHit(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
	world, ok := userData.(*PhysicsWorld)
	if !ok || world == nil {
		return true
	}
	shapeA, shapeB := arb.Shapes()
	proj := world.shapes[shapeA]
	target := world.shapes[shapeB]
	if proj == nil || target == nil {
		return true
	}
	if verticalGap(proj.elevation, target.elevation, target.height) > proj.radius {
		return true
	}
	for _, h := range world.hits {
		if h.Projectile == proj.entity {
			return true
		}
	}
	world.hits = append(world.hits, ProjectileHit{Projectile: proj.entity, Target: target.entity})
	return true
}
