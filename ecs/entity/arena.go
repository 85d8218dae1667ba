package entity

import (
	"fmt"

	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/milk9111/parrot/prefabs"
)

// ParrotLoader resolves a parrot prefab name to its spec.
type ParrotLoader func(name string) (*prefabs.ParrotSpec, error)

// NewArena populates w with the arena's bounds, ground, targets and parrots.
// The world must already have a physics world attached.
func NewArena(w *ecs.World, spec *prefabs.ArenaSpec, load ParrotLoader) error {
	if spec == nil {
		return fmt.Errorf("arena: nil spec")
	}
	if w.PhysicsWorld() == nil {
		return fmt.Errorf("arena: world has no physics")
	}
	if load == nil {
		load = prefabs.LoadParrotSpec
	}

	boundsEntity := ecs.CreateEntity(w)
	if err := ecs.Add(w, boundsEntity, component.ArenaBoundsComponent.Kind(), &component.ArenaBounds{
		MinX: spec.Bounds.MinX,
		MinZ: spec.Bounds.MinZ,
		MaxX: spec.Bounds.MaxX,
		MaxZ: spec.Bounds.MaxZ,
	}); err != nil {
		return fmt.Errorf("arena: add bounds: %w", err)
	}

	groundLayer, err := spec.Layers.Mask("ground")
	if err != nil {
		return fmt.Errorf("arena: %w", err)
	}
	for i, g := range spec.Ground {
		if err := newGround(w, g, groundLayer); err != nil {
			return fmt.Errorf("arena: ground %d: %w", i, err)
		}
	}

	for _, t := range spec.Targets {
		if _, err := NewTarget(w, t, spec.Layers); err != nil {
			return fmt.Errorf("arena: %w", err)
		}
	}

	for _, p := range spec.Parrots {
		parrotSpec, err := load(p.Prefab)
		if err != nil {
			return fmt.Errorf("arena: parrot %s: %w", p.Name, err)
		}
		if _, err := NewParrot(w, parrotSpec, p, spec.Layers); err != nil {
			return fmt.Errorf("arena: %w", err)
		}
	}

	return nil
}

func newGround(w *ecs.World, spec prefabs.GroundSpec, category uint32) error {
	entity := ecs.CreateEntity(w)
	ground := &component.Ground{
		MinX:      spec.MinX,
		MinZ:      spec.MinZ,
		MaxX:      spec.MaxX,
		MaxZ:      spec.MaxZ,
		Elevation: spec.Elevation,
	}
	if err := ecs.Add(w, entity, component.GroundComponent.Kind(), ground); err != nil {
		return err
	}
	w.PhysicsWorld().AddGround(entity, ground.MinX, ground.MinZ, ground.MaxX, ground.MaxZ, ground.Elevation, category)
	return nil
}
