package system

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

// ProjectileHit is the payload of ecs.EventProjectileHit.
type ProjectileHit struct {
	Owner  ecs.Entity
	Target ecs.Entity
}

// PhysicsSystem keeps cp bodies and transforms in sync, steps the space and
// resolves projectile hits and landings.
type PhysicsSystem struct {
	logger *log.Logger
	hooked *ecs.World
	// GroundMask selects the ground projectiles land on.
	GroundMask uint32
}

func NewPhysicsSystem(logger *log.Logger, groundMask uint32) *PhysicsSystem {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "physics"})
	}
	return &PhysicsSystem{logger: logger, GroundMask: groundMask}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	ps.Attach(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, body *component.PhysicsBody, t *component.Transform) {
		if body.Kinematic {
			pw.SyncBody(e, t.Position)
		}
	})

	dt := w.DeltaTime().Seconds()
	hits := pw.Step(dt)

	var spent []ecs.Entity
	ecs.ForEach3(w, component.ProjectileComponent.Kind(), component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, p *component.Projectile, body *component.PhysicsBody, t *component.Transform) {
		if body.Body == nil {
			return
		}
		pos := body.Body.Position()
		t.Position.X = pos.X
		t.Position.Z = pos.Y

		p.VerticalVelocity -= common.Gravity * dt
		t.Position.Y += p.VerticalVelocity * dt
		pw.SetElevation(e, t.Position.Y)

		if p.VerticalVelocity >= 0 {
			return
		}
		elev, ok := pw.GroundElevation(t.Position, ps.GroundMask)
		if !ok || t.Position.Y > elev {
			return
		}
		t.Position.Y = elev
		w.Events().Push(ecs.Event{Type: ecs.EventProjectileLand, Entity: e, Data: t.Position})
		spent = append(spent, e)
	})

	for _, hit := range hits {
		if !w.IsAlive(hit.Projectile) {
			continue
		}
		owner := ecs.Entity(0)
		if p, ok := ecs.Get(w, hit.Projectile, component.ProjectileComponent.Kind()); ok {
			owner = ecs.Entity(p.Owner)
		}
		w.Events().Push(ecs.Event{Type: ecs.EventProjectileHit, Entity: hit.Projectile, Data: ProjectileHit{Owner: owner, Target: hit.Target}})
		ps.logger.Debug("projectile hit", "projectile", hit.Projectile, "target", hit.Target)
		spent = append(spent, hit.Projectile)
	}

	for _, e := range spent {
		w.DestroyEntity(e)
	}
}

// Attach registers the destroy hook that releases cp bodies. Entities are
// only destroyed outside Space.Step, so removal is always safe there.
func (ps *PhysicsSystem) Attach(w *ecs.World) {
	if ps == nil || w == nil || ps.hooked == w {
		return
	}
	ps.hooked = w
	w.OnDestroy(func(e ecs.Entity) {
		w.PhysicsWorld().RemoveBody(e)
	})
}
