package sim

import (
	"time"

	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

type ParrotView struct {
	Entity      ecs.Entity
	Name        string
	Position    common.Vec3
	Yaw         float64
	SightRange  float64
	AttackRange float64
	State       agent.State
	Path        []component.PathNode
}

type TargetView struct {
	Entity   ecs.Entity
	Name     string
	Position common.Vec3
	Radius   float64
}

type ProjectileView struct {
	Entity   ecs.Entity
	Position common.Vec3
}

// Snapshot is a copy of the arena state, safe to keep across steps.
type Snapshot struct {
	Elapsed     time.Duration
	Steps       uint64
	Bounds      component.ArenaBounds
	Ground      []component.Ground
	Parrots     []ParrotView
	Targets     []TargetView
	Projectiles []ProjectileView
}

func (s *Sim) Snapshot() Snapshot {
	if s == nil || s.world == nil {
		return Snapshot{}
	}
	w := s.world
	snap := Snapshot{
		Elapsed: w.Elapsed(),
		Steps:   w.Steps(),
	}

	if e, ok := ecs.First(w, component.ArenaBoundsComponent.Kind()); ok {
		if b, ok := ecs.Get(w, e, component.ArenaBoundsComponent.Kind()); ok {
			snap.Bounds = *b
		}
	}

	ecs.ForEach(w, component.GroundComponent.Kind(), func(_ ecs.Entity, g *component.Ground) {
		snap.Ground = append(snap.Ground, *g)
	})

	ecs.ForEach2(w, component.ParrotComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, p *component.Parrot, t *component.Transform) {
		view := ParrotView{
			Entity:      e,
			Name:        p.Name,
			Position:    t.Position,
			Yaw:         t.Yaw,
			SightRange:  p.Config.SightRange,
			AttackRange: p.Config.AttackRange,
			State:       agent.State{Mode: p.Mode},
		}
		if p.Controller != nil {
			view.State = p.Controller.State()
		}
		if nav, ok := ecs.Get(w, e, component.NavAgentComponent.Kind()); ok && nav.PathIndex < len(nav.Path) {
			view.Path = append([]component.PathNode(nil), nav.Path[nav.PathIndex:]...)
		}
		snap.Parrots = append(snap.Parrots, view)
	})

	ecs.ForEach2(w, component.TargetTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, tag *component.TargetTag, t *component.Transform) {
		view := TargetView{Entity: e, Name: tag.Name, Position: t.Position}
		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			view.Radius = body.Radius
		}
		snap.Targets = append(snap.Targets, view)
	})

	ecs.ForEach2(w, component.ProjectileComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.Projectile, t *component.Transform) {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{Entity: e, Position: t.Position})
	})

	return snap
}
