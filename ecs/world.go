package ecs

import (
	"time"

	"github.com/milk9111/parrot/ecs/component"
)

// System updates a world each step.
type System interface {
	Update(w *World)
}

// World owns entities, component storages, the step clock and the shared
// services systems talk through.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*sparseSet

	destroyHooks []func(Entity)

	events  EventQueue
	timers  *Timers
	physics *PhysicsWorld

	dt      time.Duration
	elapsed time.Duration
	steps   uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*sparseSet),
		timers: NewTimers(),
	}
}

func CreateEntity(w *World) Entity {
	return w.CreateEntity()
}

func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

func DestroyEntity(w *World, e Entity) bool {
	return w.DestroyEntity(e)
}

// DestroyEntity runs destroy hooks, drops every component of e and
// invalidates the handle. It reports whether e was alive.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, hook := range w.destroyHooks {
		hook(e)
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

// OnDestroy registers fn to run before any entity is destroyed, while its
// components are still readable.
func (w *World) OnDestroy(fn func(Entity)) {
	if w == nil || fn == nil {
		return
	}
	w.destroyHooks = append(w.destroyHooks, fn)
}

func IsAlive(w *World, e Entity) bool {
	return w.IsAlive(e)
}

func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns all live entities in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

// Step advances the world clock and runs the systems in order.
func (w *World) Step(dt time.Duration, systems *Scheduler) {
	if w == nil {
		return
	}
	w.dt = dt
	w.elapsed += dt
	w.steps++
	w.events.flush()
	if systems != nil {
		systems.Update(w)
	}
}

// DeltaTime is the duration of the current step.
func (w *World) DeltaTime() time.Duration {
	if w == nil {
		return 0
	}
	return w.dt
}

// Elapsed is the simulated time since the world was created.
func (w *World) Elapsed() time.Duration {
	if w == nil {
		return 0
	}
	return w.elapsed
}

func (w *World) Steps() uint64 {
	if w == nil {
		return 0
	}
	return w.steps
}

// Events returns the world event queue. Events live for one step.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) Timers() *Timers {
	if w == nil {
		return nil
	}
	return w.timers
}

// SetPhysicsWorld attaches a physics world to this ECS world.
func (w *World) SetPhysicsWorld(pw *PhysicsWorld) {
	if w == nil {
		return
	}
	w.physics = pw
}

// PhysicsWorld returns the attached physics world, if any.
func (w *World) PhysicsWorld() *PhysicsWorld {
	if w == nil {
		return nil
	}
	return w.physics
}

func (w *World) store(id component.ComponentID, create bool) *sparseSet {
	s, ok := w.stores[id]
	if !ok && create {
		s = &sparseSet{}
		w.stores[id] = s
	}
	return s
}
