package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/parrot/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedArena(t *testing.T) {
	arena, err := LoadArenaSpec("arena.yaml")
	require.NoError(t, err)
	assert.Equal(t, "courtyard", arena.Name)
	assert.NotEmpty(t, arena.Ground)
	assert.NotEmpty(t, arena.Targets)
	require.NotEmpty(t, arena.Parrots)

	for _, p := range arena.Parrots {
		spec, err := LoadParrotSpec(p.Prefab)
		require.NoError(t, err, p.Prefab)
		_, err = spec.AgentConfig(arena.Layers)
		require.NoError(t, err, p.Prefab)
	}
	for _, target := range arena.Targets {
		if target.Script == "" {
			continue
		}
		_, err := LoadScript(target.Script)
		require.NoError(t, err, target.Script)
	}
}

func TestParrotSpecAgentConfig(t *testing.T) {
	spec, err := LoadParrotSpec("parrot.yaml")
	require.NoError(t, err)

	layers := Layers{"target": 1, "ground": 2, "projectile": 4}
	cfg, err := spec.AgentConfig(layers)
	require.NoError(t, err)

	assert.Equal(t, 12.0, cfg.SightRange)
	assert.Equal(t, 6.0, cfg.AttackRange)
	assert.True(t, cfg.Cooldown.Randomized())
	assert.Equal(t, time.Second, cfg.Cooldown.Min)
	assert.Equal(t, 2500*time.Millisecond, cfg.Cooldown.Max)
	assert.Equal(t, agent.Filter(1), cfg.TargetFilter)
	assert.Equal(t, agent.Filter(2), cfg.GroundFilter)
	assert.Equal(t, 32.0, cfg.ForwardImpulse)
	assert.Equal(t, 3*time.Second, spec.Projectile.TTL)
}

func TestAgentConfigDefaultsAndErrors(t *testing.T) {
	layers := Layers{"target": 1, "ground": 2}

	cfg, err := (&ParrotSpec{Name: "bare", SightRange: 5, AttackRange: 2, Cooldown: CooldownSpec{Duration: time.Second}}).AgentConfig(layers)
	require.NoError(t, err)
	assert.Equal(t, agent.DefaultReachTolerance, cfg.ReachTolerance)
	assert.Equal(t, agent.DefaultUpImpulse, cfg.UpImpulse)

	_, err = (&ParrotSpec{Name: "typo", Filters: FilterSpec{Target: []string{"targt"}}}).AgentConfig(layers)
	assert.True(t, errors.Is(err, ErrUnknownLayer), "got %v", err)

	_, err = (&ParrotSpec{Name: "neg", SightRange: -1}).AgentConfig(layers)
	assert.True(t, errors.Is(err, agent.ErrInvalidConfig), "got %v", err)

	for _, cd := range []CooldownSpec{
		{Min: 3 * time.Second, Max: time.Second},
		{Min: time.Second},
		{Duration: time.Second, Max: 2 * time.Second},
		{},
	} {
		_, err = (&ParrotSpec{Name: "cooldown", Cooldown: cd}).AgentConfig(layers)
		assert.True(t, errors.Is(err, agent.ErrInvalidConfig), "%+v: got %v", cd, err)
	}
}

func TestHalfSpecifiedCooldownRejected(t *testing.T) {
	usePrefabDir(t, map[string]string{"lazy.yaml": "name: lazy\ncooldown:\n  min: 1s\n"})

	spec, err := LoadParrotSpec("lazy.yaml")
	require.NoError(t, err)
	_, err = spec.AgentConfig(Layers{"target": 1, "ground": 2})
	assert.ErrorIs(t, err, agent.ErrInvalidConfig)
}

func TestLayersMask(t *testing.T) {
	layers := Layers{"a": 1, "b": 4}
	mask, err := layers.Mask("a", "b")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), mask)

	mask, err = layers.Mask()
	require.NoError(t, err)
	assert.Zero(t, mask)

	_, err = layers.Mask("c")
	assert.ErrorIs(t, err, ErrUnknownLayer)
}

// usePrefabDir points prefab loading at a temp dir holding the given files.
func usePrefabDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
	return dir
}

func TestArenaLayersValidated(t *testing.T) {
	usePrefabDir(t, map[string]string{
		"zero.yaml":     "name: zero\nlayers: {target: 1, ground: 0}\n",
		"reserved.yaml": "name: reserved\nlayers: {target: 2147483648, ground: 2}\n",
		"mixed.yaml":    "name: mixed\nlayers: {target: 2147483649, ground: 2}\n",
		"ok.yaml":       "name: ok\nlayers: {target: 8, ground: 16, projectile: 32}\n",
	})

	for _, name := range []string{"zero.yaml", "reserved.yaml", "mixed.yaml"} {
		_, err := LoadArenaSpec(name)
		assert.ErrorIs(t, err, ErrInvalidLayer, name)
	}

	arena, err := LoadArenaSpec("ok.yaml")
	require.NoError(t, err)
	mask, err := arena.Layers.Mask("target", "ground")
	require.NoError(t, err)
	assert.Equal(t, uint32(24), mask)
}

func TestDiskOverridesEmbedded(t *testing.T) {
	usePrefabDir(t, map[string]string{"parrot.yaml": "name: override\nsight_range: 3\n"})

	spec, err := LoadParrotSpec("prefabs/parrot.yaml")
	require.NoError(t, err)
	assert.Equal(t, "override", spec.Name)

	_, ok := ModTime("parrot.yaml")
	assert.True(t, ok)
	_, ok = ModTime("sentry.yaml")
	assert.False(t, ok, "embedded-only prefab has no disk mtime")
}

func TestLoadSpecErrors(t *testing.T) {
	_, err := LoadArenaSpec("missing.yaml")
	assert.Error(t, err)

	usePrefabDir(t, map[string]string{"bad.yaml": "sight_range: [\n"})

	_, err = LoadParrotSpec("bad.yaml")
	assert.ErrorContains(t, err, "unmarshal bad.yaml")
}

func TestCleanScriptPath(t *testing.T) {
	for _, in := range []string{"orbit.tengo", "scripts/orbit.tengo", "prefabs/scripts/orbit.tengo", "prefabs/orbit.tengo"} {
		assert.Equal(t, "scripts/orbit.tengo", cleanScriptPath(in), in)
	}
}
