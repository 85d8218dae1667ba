package entity

import (
	"fmt"

	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/milk9111/parrot/prefabs"
)

const (
	defaultTargetRadius = 0.5
	defaultTargetHeight = 1.8
)

// NewTarget creates a kinematic target. When the spec names a script the
// target is moved by it.
func NewTarget(w *ecs.World, spec prefabs.TargetSpec, layers prefabs.Layers) (ecs.Entity, error) {
	category, err := layers.Mask("target")
	if err != nil {
		return 0, fmt.Errorf("target: %w", err)
	}
	projectileMask, err := layers.Mask("projectile")
	if err != nil {
		return 0, fmt.Errorf("target: %w", err)
	}

	radius := spec.Radius
	if radius <= 0 {
		radius = defaultTargetRadius
	}
	height := spec.Height
	if height <= 0 {
		height = defaultTargetHeight
	}
	pos := common.Vec3{X: spec.Position.X, Y: spec.Position.Y, Z: spec.Position.Z}

	entity := ecs.CreateEntity(w)

	if err := ecs.Add(w, entity, component.TargetTagComponent.Kind(), &component.TargetTag{Name: spec.Name}); err != nil {
		return 0, fmt.Errorf("target: add tag: %w", err)
	}

	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
		return 0, fmt.Errorf("target: add transform: %w", err)
	}

	if err := ecs.Add(w, entity, component.LayerComponent.Kind(), &component.Layer{Category: category, Mask: projectileMask}); err != nil {
		return 0, fmt.Errorf("target: add layer: %w", err)
	}

	body := w.PhysicsWorld().AddTarget(entity, pos, radius, height, category, projectileMask)
	if body == nil {
		return 0, fmt.Errorf("target: no physics world")
	}
	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Body:      body,
		Radius:    radius,
		Height:    height,
		Kinematic: true,
	}); err != nil {
		return 0, fmt.Errorf("target: add physics body: %w", err)
	}

	if spec.Script != "" {
		if err := ecs.Add(w, entity, component.TargetScriptComponent.Kind(), &component.TargetScript{
			Path:   spec.Script,
			Params: spec.Params,
		}); err != nil {
			return 0, fmt.Errorf("target: add script: %w", err)
		}
	}

	return entity, nil
}
