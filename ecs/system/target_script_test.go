package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/milk9111/parrot/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedTarget(t *testing.T, w *ecs.World, pos common.Vec3, path string, params map[string]any) *component.Transform {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}))
	require.NoError(t, ecs.Add(w, e, component.TargetScriptComponent.Kind(), &component.TargetScript{Path: path, Params: params}))
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	return tr
}

func TestTargetScriptMovesTarget(t *testing.T) {
	w := ecs.NewWorld()
	tr := scriptedTarget(t, w, common.Vec3{X: 1, Y: 0.5, Z: 2}, "scripts/strafe.tengo", map[string]any{"span": 2.0, "speed": 0.25})
	sched := ecs.NewScheduler(NewTargetScriptSystem(quietLogger()))

	w.Step(time.Second, sched)
	assert.InDelta(t, 3, tr.Position.X, 1e-9, "quarter period puts the target at full span")
	assert.InDelta(t, 2, tr.Position.Z, 1e-9)
	assert.Equal(t, 0.5, tr.Position.Y, "scripts never change elevation")

	w.Step(time.Second, sched)
	assert.InDelta(t, 1, tr.Position.X, 1e-9, "state remembers the starting point")
}

func TestTargetScriptOrbit(t *testing.T) {
	w := ecs.NewWorld()
	tr := scriptedTarget(t, w, common.Vec3{X: 5}, "orbit.tengo", map[string]any{"radius": 5, "speed": 0.25})
	sched := ecs.NewScheduler(NewTargetScriptSystem(quietLogger()))

	for i := 0; i < 4; i++ {
		w.Step(500*time.Millisecond, sched)
		assert.InDelta(t, 5, math.Hypot(tr.Position.X, tr.Position.Z), 1e-9, "stays on the circle")
	}
}

func TestBrokenTargetScriptFreezesTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "broken.tengo"), []byte(`
update := func(engine, state, t) {
	engine.teleport(0, 0)
}
`), 0o644))

	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })

	w := ecs.NewWorld()
	tr := scriptedTarget(t, w, common.Vec3{X: 4}, "broken.tengo", nil)
	sys := NewTargetScriptSystem(quietLogger())
	sched := ecs.NewScheduler(sys)

	w.Step(time.Second, sched)
	w.Step(time.Second, sched)
	assert.Equal(t, 4.0, tr.Position.X)
	require.Len(t, sys.scriptCache, 1)
	for _, rt := range sys.scriptCache {
		assert.True(t, rt.failed)
	}

	sys.Reset()
	assert.Empty(t, sys.scriptCache)
}

func TestTargetScriptMissingFile(t *testing.T) {
	w := ecs.NewWorld()
	tr := scriptedTarget(t, w, common.Vec3{X: 4}, "does_not_exist.tengo", nil)
	sched := ecs.NewScheduler(NewTargetScriptSystem(quietLogger()))

	w.Step(time.Second, sched)
	assert.Equal(t, 4.0, tr.Position.X)
}
