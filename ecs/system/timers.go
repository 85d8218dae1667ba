package system

import "github.com/milk9111/parrot/ecs"

// TimerSystem advances the world's timer queue by the step duration, firing
// due callbacks such as attack cooldown resets.
type TimerSystem struct{}

func NewTimerSystem() *TimerSystem {
	return &TimerSystem{}
}

func (s *TimerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	w.Timers().Advance(w.DeltaTime())
}
