package system

import (
	"testing"
	"time"

	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLDestroysExpiredEntities(t *testing.T) {
	w := ecs.NewWorld()
	short := w.CreateEntity()
	long := w.CreateEntity()
	require.NoError(t, ecs.Add(w, short, component.TTLComponent.Kind(), &component.TTL{Remaining: 100 * time.Millisecond}))
	require.NoError(t, ecs.Add(w, long, component.TTLComponent.Kind(), &component.TTL{Remaining: time.Second}))

	sched := ecs.NewScheduler(NewTTLSystem())
	w.Step(50*time.Millisecond, sched)
	assert.True(t, w.IsAlive(short))

	w.Step(50*time.Millisecond, sched)
	assert.False(t, w.IsAlive(short))
	assert.True(t, w.IsAlive(long))

	ttl, ok := ecs.Get(w, long, component.TTLComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 900*time.Millisecond, ttl.Remaining)
}

func TestTimerSystemAdvancesWorldTimers(t *testing.T) {
	w := ecs.NewWorld()
	fired := 0
	w.Timers().After(100*time.Millisecond, func() { fired++ })

	sched := ecs.NewScheduler(NewTimerSystem())
	w.Step(60*time.Millisecond, sched)
	assert.Equal(t, 0, fired)
	w.Step(60*time.Millisecond, sched)
	assert.Equal(t, 1, fired)
}
