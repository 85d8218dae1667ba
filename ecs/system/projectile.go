package system

import (
	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

const (
	defaultProjectileRadius = 0.25
	defaultProjectileMass   = 1.0
)

// ProjectileFired is the payload of ecs.EventProjectileFired.
type ProjectileFired struct {
	Owner   ecs.Entity
	Impulse common.Vec3
}

// projectileSpawner creates projectile entities on behalf of one parrot.
type projectileSpawner struct {
	w     *ecs.World
	owner ecs.Entity
}

func (s *projectileSpawner) Spawn(at, forwardImpulse, upImpulse common.Vec3) agent.ProjectileHandle {
	e, ok := SpawnProjectile(s.w, s.owner, at, forwardImpulse.Add(upImpulse))
	if !ok {
		return 0
	}
	return agent.ProjectileHandle(e)
}

// SpawnProjectile creates a projectile at `at` and applies impulse to it.
// The planar part drives the cp body and the vertical part becomes the
// initial vertical velocity.
func SpawnProjectile(w *ecs.World, owner ecs.Entity, at, impulse common.Vec3) (ecs.Entity, bool) {
	if w == nil {
		return 0, false
	}

	cfg := component.ProjectileConfig{}
	if p, ok := ecs.Get(w, owner, component.ParrotComponent.Kind()); ok {
		cfg = p.Projectile
	}
	if cfg.Radius <= 0 {
		cfg.Radius = defaultProjectileRadius
	}
	if cfg.Mass <= 0 {
		cfg.Mass = defaultProjectileMass
	}

	layer := component.Layer{}
	if l, ok := ecs.Get(w, owner, component.LayerComponent.Kind()); ok {
		layer = *l
	}

	e := w.CreateEntity()
	body := w.PhysicsWorld().AddProjectile(e, at, common.Vec3{X: impulse.X, Z: impulse.Z}, cfg.Mass, cfg.Radius, layer.Category, layer.Mask)

	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: at})
	_ = ecs.Add(w, e, component.ProjectileComponent.Kind(), &component.Projectile{
		Owner:            uint64(owner),
		VerticalVelocity: impulse.Y / cfg.Mass,
		Radius:           cfg.Radius,
	})
	if body != nil {
		_ = ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body, Radius: cfg.Radius, Mass: cfg.Mass})
	}
	if cfg.TTL > 0 {
		_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Remaining: cfg.TTL})
	}

	w.Events().Push(ecs.Event{Type: ecs.EventProjectileFired, Entity: e, Data: ProjectileFired{Owner: owner, Impulse: impulse}})
	return e, true
}
