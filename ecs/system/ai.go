package system

import (
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

// ModeChange is the payload of ecs.EventModeChanged.
type ModeChange struct {
	From agent.Mode
	To   agent.Mode
}

// AISystem owns one agent controller per parrot and ticks it every step.
type AISystem struct {
	logger *log.Logger
	rng    *rand.Rand
	hooked *ecs.World
}

func NewAISystem(logger *log.Logger, seed int64) *AISystem {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "ai"})
	}
	return &AISystem{
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *AISystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.Attach(w)

	dt := w.DeltaTime()
	for _, e := range ecs.Query(w, component.ParrotComponent.Kind()) {
		p, ok := ecs.Get(w, e, component.ParrotComponent.Kind())
		if !ok {
			continue
		}
		if p.Controller == nil {
			ctrl, err := s.newController(w, e, p)
			if err != nil {
				s.logger.Error("create controller", "parrot", p.Name, "entity", e, "err", err)
				continue
			}
			p.Controller = ctrl
			p.Mode = ctrl.Mode()
		}

		prev := p.Mode
		next := p.Controller.Tick(dt)
		if next == prev {
			continue
		}
		p.Mode = next
		w.Events().Push(ecs.Event{Type: ecs.EventModeChanged, Entity: e, Data: ModeChange{From: prev, To: next}})
		s.logger.Info("mode", "parrot", p.Name, "from", prev, "to", next, "t", w.Elapsed())
	}
}

// Attach registers the destroy hook that closes controllers of destroyed
// parrots, so their pending cooldown resets never fire against a dead entity.
func (s *AISystem) Attach(w *ecs.World) {
	if s == nil || w == nil || s.hooked == w {
		return
	}
	s.hooked = w
	w.OnDestroy(func(e ecs.Entity) {
		p, ok := ecs.Get(w, e, component.ParrotComponent.Kind())
		if !ok || p.Controller == nil {
			return
		}
		p.Controller.Close()
		s.logger.Debug("controller closed", "parrot", p.Name, "entity", e)
	})
}

func (s *AISystem) newController(w *ecs.World, e ecs.Entity, p *component.Parrot) (*agent.Controller, error) {
	seed := p.Seed
	if seed == 0 {
		seed = s.rng.Int63()
	}
	queries := physicsQueries{pw: w.PhysicsWorld()}

	cfg := p.Config
	if cfg.AttackRange > cfg.SightRange {
		s.logger.Warn("attack range exceeds sight range, parrot will never attack", "parrot", p.Name, "attack", cfg.AttackRange, "sight", cfg.SightRange)
	}

	return agent.New(cfg, agent.Collaborators{
		Body:      transformBody{w: w, e: e},
		Target:    nearestTarget{w: w, self: e},
		Navigator: navDestination{w: w, e: e},
		Sensor:    queries,
		Ground:    queries,
		Spawner:   &projectileSpawner{w: w, owner: e},
		Scheduler: timerScheduler{timers: w.Timers()},
		Rand:      rand.New(rand.NewSource(seed)),
		Logger:    s.logger.With("parrot", p.Name),
	})
}
