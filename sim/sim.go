package sim

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/entity"
	"github.com/milk9111/parrot/ecs/system"
	"github.com/milk9111/parrot/prefabs"
)

const DefaultArena = "arena.yaml"

type Options struct {
	Arena  string
	Seed   int64
	Logger *log.Logger
	// Parrots overrides how parrot prefabs are loaded.
	Parrots entity.ParrotLoader
}

// Sim is a running arena: the world, its systems and the run's identity.
type Sim struct {
	ID uuid.UUID

	opts   Options
	logger *log.Logger

	world     *ecs.World
	scheduler *ecs.Scheduler
	scripts   *system.TargetScriptSystem
}

// New loads the arena and builds a world ready to step.
func New(opts Options) (*Sim, error) {
	if opts.Arena == "" {
		opts.Arena = DefaultArena
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	base := opts.Logger
	if base == nil {
		base = log.NewWithOptions(os.Stderr, log.Options{Prefix: "sim", ReportTimestamp: true})
	}

	s := &Sim{
		ID:   uuid.New(),
		opts: opts,
	}
	s.logger = base.With("run", s.ID.String())

	if err := s.build(); err != nil {
		return nil, err
	}
	s.logger.Info("arena loaded", "arena", opts.Arena, "seed", opts.Seed, "entities", len(ecs.Entities(s.world)))
	return s, nil
}

func (s *Sim) build() error {
	spec, err := prefabs.LoadArenaSpec(s.opts.Arena)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	groundMask, err := spec.Layers.Mask("ground")
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}

	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(0, s.logger.WithPrefix("physics")))

	scripts := system.NewTargetScriptSystem(s.logger.WithPrefix("script"))
	physics := system.NewPhysicsSystem(s.logger.WithPrefix("physics"), groundMask)
	ai := system.NewAISystem(s.logger.WithPrefix("ai"), s.opts.Seed)
	nav := system.NewNavigationSystem(s.logger.WithPrefix("nav"), groundMask)

	ai.Attach(w)
	physics.Attach(w)

	scheduler := ecs.NewScheduler(
		system.NewTimerSystem(),
		scripts,
		physics,
		ai,
		nav,
		system.NewTTLSystem(),
	)

	if err := entity.NewArena(w, spec, s.opts.Parrots); err != nil {
		teardown(w)
		return fmt.Errorf("sim: %w", err)
	}

	old := s.world
	s.world = w
	s.scheduler = scheduler
	s.scripts = scripts
	if old != nil {
		teardown(old)
	}
	return nil
}

// Step advances the simulation by dt and hands over the events raised during
// the step.
func (s *Sim) Step(dt time.Duration) []ecs.Event {
	if s == nil || s.world == nil {
		return nil
	}
	s.world.Step(dt, s.scheduler)
	return s.world.Events().Drain()
}

// Reload rebuilds the arena from the current prefab files. On failure the
// running world is kept.
func (s *Sim) Reload() error {
	if err := s.build(); err != nil {
		s.logger.Error("reload failed, keeping current arena", "err", err)
		return err
	}
	s.logger.Info("arena reloaded", "arena", s.opts.Arena)
	return nil
}

// PollReload applies pending watcher changes without blocking. Script edits
// only recompile scripts; prefab edits rebuild the arena.
func (s *Sim) PollReload(w *prefabs.Watcher) (bool, error) {
	if w == nil {
		return false, nil
	}
	rebuild, rescript := false, false
drain:
	for {
		select {
		case change, ok := <-w.Events:
			if !ok {
				break drain
			}
			s.logger.Debug("prefab changed", "path", change.Path, "script", change.Script)
			if change.Script {
				rescript = true
			} else {
				rebuild = true
			}
		case err, ok := <-w.Errors:
			if !ok {
				break drain
			}
			s.logger.Warn("watcher", "err", err)
		default:
			break drain
		}
	}

	switch {
	case rebuild:
		return true, s.Reload()
	case rescript:
		s.scripts.Reset()
		s.logger.Info("scripts reloaded")
		return true, nil
	default:
		return false, nil
	}
}

// World exposes the underlying ECS world.
func (s *Sim) World() *ecs.World {
	if s == nil {
		return nil
	}
	return s.world
}

func (s *Sim) Logger() *log.Logger {
	return s.logger
}

// Close destroys every entity, cancelling pending parrot timers.
func (s *Sim) Close() {
	if s == nil || s.world == nil {
		return
	}
	teardown(s.world)
	s.logger.Info("run closed", "elapsed", s.world.Elapsed(), "steps", s.world.Steps())
}

func teardown(w *ecs.World) {
	for _, e := range ecs.Entities(w) {
		w.DestroyEntity(e)
	}
}
