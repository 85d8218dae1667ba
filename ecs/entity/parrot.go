package entity

import (
	"fmt"

	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/milk9111/parrot/prefabs"
)

// NewParrot creates an AI parrot from a prefab placed in an arena. The
// controller itself is created by the AI system on its first update.
func NewParrot(w *ecs.World, spec *prefabs.ParrotSpec, place prefabs.ParrotPlacementSpec, layers prefabs.Layers) (ecs.Entity, error) {
	if spec == nil {
		return 0, fmt.Errorf("parrot: nil spec")
	}
	cfg, err := spec.AgentConfig(layers)
	if err != nil {
		return 0, fmt.Errorf("parrot: %w", err)
	}
	projectileLayer, err := layers.Mask("projectile")
	if err != nil {
		return 0, fmt.Errorf("parrot: projectile layer: %w", err)
	}

	name := place.Name
	if name == "" {
		name = spec.Name
	}

	entity := ecs.CreateEntity(w)

	if err := ecs.Add(w, entity, component.ParrotTagComponent.Kind(), &component.ParrotTag{}); err != nil {
		return 0, fmt.Errorf("parrot: add tag: %w", err)
	}

	if err := ecs.Add(w, entity, component.ParrotComponent.Kind(), &component.Parrot{
		Name:   name,
		Config: cfg,
		Projectile: component.ProjectileConfig{
			TTL:    spec.Projectile.TTL,
			Radius: spec.Projectile.Radius,
			Mass:   spec.Projectile.Mass,
		},
		Seed: place.Seed,
	}); err != nil {
		return 0, fmt.Errorf("parrot: add parrot: %w", err)
	}

	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{
		Position: common.Vec3{X: place.Position.X, Y: place.Position.Y, Z: place.Position.Z},
		Yaw:      place.Yaw,
	}); err != nil {
		return 0, fmt.Errorf("parrot: add transform: %w", err)
	}

	if err := ecs.Add(w, entity, component.NavAgentComponent.Kind(), &component.NavAgent{
		Speed:        spec.MoveSpeed,
		GridSize:     spec.Nav.GridSize,
		RepathFrames: spec.Nav.RepathFrames,
	}); err != nil {
		return 0, fmt.Errorf("parrot: add nav agent: %w", err)
	}

	// Projectiles fired by this parrot use the projectile layer and hit
	// whatever the parrot senses as a target.
	if err := ecs.Add(w, entity, component.LayerComponent.Kind(), &component.Layer{
		Category: projectileLayer,
		Mask:     uint32(cfg.TargetFilter),
	}); err != nil {
		return 0, fmt.Errorf("parrot: add layer: %w", err)
	}

	return entity, nil
}
