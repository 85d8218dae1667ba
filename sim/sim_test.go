package sim

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/system"
	"github.com/milk9111/parrot/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = time.Second / 60

const duelArena = `name: duel
bounds: {min_x: -10, min_z: -10, max_x: 10, max_z: 10}
ground:
  - {min_x: -10, min_z: -10, max_x: 10, max_z: 10, elevation: 0}
targets:
  - name: dummy
    position: {x: 0, y: 0, z: 3}
    radius: 0.5
    height: 1.8
parrots:
  - name: polly
    prefab: parrot.yaml
    position: {x: 0, y: 0, z: 0}
`

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// usePrefabDir points prefab loading at a temp dir holding the given files.
func usePrefabDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })
	return dir
}

func TestNewLoadsDefaultArena(t *testing.T) {
	s, err := New(Options{Seed: 1, Logger: quietLogger()})
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	assert.Len(t, snap.Parrots, 2)
	assert.Len(t, snap.Targets, 1)
	assert.Len(t, snap.Ground, 4)
	assert.Equal(t, 40.0, snap.Bounds.Width())
	for _, p := range snap.Parrots {
		assert.Equal(t, agent.ModePatrol, p.State.Mode, p.Name)
	}

	s.Step(tick)
	snap = s.Snapshot()
	assert.Equal(t, uint64(1), snap.Steps)
	assert.Equal(t, tick, snap.Elapsed)
}

func TestParrotAttacksNearbyTarget(t *testing.T) {
	usePrefabDir(t, map[string]string{"duel.yaml": duelArena})

	s, err := New(Options{Arena: "duel.yaml", Seed: 3, Logger: quietLogger()})
	require.NoError(t, err)
	defer s.Close()

	var attacked, fired bool
	for i := 0; i < 10 && !fired; i++ {
		for _, evt := range s.Step(tick) {
			switch evt.Type {
			case ecs.EventModeChanged:
				if evt.Data.(system.ModeChange).To == agent.ModeAttack {
					attacked = true
				}
			case ecs.EventProjectileFired:
				fired = true
			}
		}
	}
	assert.True(t, attacked, "parrot never entered attack")
	assert.True(t, fired, "parrot never fired")

	snap := s.Snapshot()
	require.Len(t, snap.Parrots, 1)
	assert.Equal(t, agent.ModeAttack, snap.Parrots[0].State.Mode)
	assert.True(t, snap.Parrots[0].State.CoolingDown)
	assert.Equal(t, 1, snap.Parrots[0].State.ShotsFired)
}

func TestReloadKeepsWorldOnError(t *testing.T) {
	dir := usePrefabDir(t, map[string]string{"duel.yaml": duelArena})

	s, err := New(Options{Arena: "duel.yaml", Seed: 3, Logger: quietLogger()})
	require.NoError(t, err)
	defer s.Close()

	before := s.World()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duel.yaml"), []byte("ground: [\n"), 0o644))
	assert.Error(t, s.Reload())
	assert.Same(t, before, s.World())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "duel.yaml"), []byte(duelArena), 0o644))
	require.NoError(t, s.Reload())
	assert.NotSame(t, before, s.World())
	assert.Empty(t, ecs.Entities(before), "old world is torn down")
	assert.Len(t, s.Snapshot().Parrots, 1)
}

func TestUnknownParrotPrefabFailsLoad(t *testing.T) {
	usePrefabDir(t, map[string]string{"duel.yaml": duelArena})

	_, err := New(Options{
		Arena:  "duel.yaml",
		Logger: quietLogger(),
		Parrots: func(name string) (*prefabs.ParrotSpec, error) {
			return prefabs.LoadParrotSpec("missing-" + name)
		},
	})
	assert.ErrorContains(t, err, "parrot polly")
}

func TestCloseCancelsPendingCooldowns(t *testing.T) {
	usePrefabDir(t, map[string]string{"duel.yaml": duelArena})

	s, err := New(Options{Arena: "duel.yaml", Seed: 3, Logger: quietLogger()})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.Step(tick)
	}
	require.NotZero(t, s.World().Timers().Pending())

	s.Close()
	assert.Zero(t, s.World().Timers().Pending())
	assert.Empty(t, ecs.Entities(s.World()))
}

func TestPollReloadWithoutWatcher(t *testing.T) {
	s, err := New(Options{Seed: 1, Logger: quietLogger()})
	require.NoError(t, err)
	defer s.Close()

	reloaded, err := s.PollReload(nil)
	assert.False(t, reloaded)
	assert.NoError(t, err)
}
