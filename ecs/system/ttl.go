package system

import (
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

// TTLSystem counts down TTL components by the step duration and destroys
// entities whose time has run out.
type TTLSystem struct{}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	dt := w.DeltaTime()
	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		if ttl == nil {
			return
		}

		ttl.Remaining -= dt
		if ttl.Remaining > 0 {
			return
		}

		// expired
		ecs.DestroyEntity(w, e)
	})
}
