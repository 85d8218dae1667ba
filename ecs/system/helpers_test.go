package system

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/stretchr/testify/require"
)

const (
	layerTarget     uint32 = 1
	layerGround     uint32 = 2
	layerProjectile uint32 = 4
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestWorld(t *testing.T, bounds component.ArenaBounds) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(0, quietLogger()))
	b := w.CreateEntity()
	require.NoError(t, ecs.Add(w, b, component.ArenaBoundsComponent.Kind(), &bounds))
	return w
}

func addGround(t *testing.T, w *ecs.World, g component.Ground) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.GroundComponent.Kind(), &g))
	w.PhysicsWorld().AddGround(e, g.MinX, g.MinZ, g.MaxX, g.MaxZ, g.Elevation, layerGround)
	return e
}

func addTarget(t *testing.T, w *ecs.World, pos common.Vec3) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TargetTagComponent.Kind(), &component.TargetTag{Name: "dummy"}))
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}))
	body := w.PhysicsWorld().AddTarget(e, pos, 0.5, 1.8, layerTarget, layerProjectile)
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body, Radius: 0.5, Height: 1.8, Kinematic: true}))
	return e
}

func addParrot(t *testing.T, w *ecs.World, pos common.Vec3, cfg agent.Config) ecs.Entity {
	t.Helper()
	cfg.TargetFilter = agent.Filter(layerTarget)
	cfg.GroundFilter = agent.Filter(layerGround)
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.ParrotComponent.Kind(), &component.Parrot{
		Name:       "polly",
		Config:     cfg,
		Projectile: component.ProjectileConfig{TTL: 2 * time.Second, Radius: 0.25, Mass: 1},
		Seed:       7,
	}))
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}))
	require.NoError(t, ecs.Add(w, e, component.NavAgentComponent.Kind(), &component.NavAgent{Speed: 3, GridSize: 1, RepathFrames: 15}))
	require.NoError(t, ecs.Add(w, e, component.LayerComponent.Kind(), &component.Layer{Category: layerProjectile, Mask: layerTarget}))
	return e
}

// fullScheduler mirrors the order the simulation runs systems in.
func fullScheduler(w *ecs.World) *ecs.Scheduler {
	ai := NewAISystem(quietLogger(), 1)
	physics := NewPhysicsSystem(quietLogger(), layerGround)
	ai.Attach(w)
	physics.Attach(w)
	return ecs.NewScheduler(
		NewTimerSystem(),
		NewTargetScriptSystem(quietLogger()),
		physics,
		ai,
		NewNavigationSystem(quietLogger(), layerGround),
		NewTTLSystem(),
	)
}

func countEvents(w *ecs.World, typ ecs.EventType) int {
	n := 0
	for _, evt := range w.Events().Items() {
		if evt.Type == typ {
			n++
		}
	}
	return n
}
