package system

import (
	"math"
	"time"

	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

// transformBody exposes an entity's transform as an agent body.
type transformBody struct {
	w *ecs.World
	e ecs.Entity
}

func (b transformBody) Position() common.Vec3 {
	if t, ok := ecs.Get(b.w, b.e, component.TransformComponent.Kind()); ok {
		return t.Position
	}
	return common.Vec3{}
}

func (b transformBody) Forward() common.Vec3 {
	if t, ok := ecs.Get(b.w, b.e, component.TransformComponent.Kind()); ok {
		return common.YawForward(t.Yaw)
	}
	return common.Forward
}

func (b transformBody) LookAt(point common.Vec3) {
	t, ok := ecs.Get(b.w, b.e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	if yaw, ok := common.YawTowards(t.Position, point); ok {
		t.Yaw = yaw
	}
}

// nearestTarget resolves the closest live target to the agent every time it
// is asked, so destroyed or respawned targets are picked up.
type nearestTarget struct {
	w    *ecs.World
	self ecs.Entity
}

func (n nearestTarget) Position() (common.Vec3, bool) {
	origin := transformBody{w: n.w, e: n.self}.Position()
	best := math.Inf(1)
	var pos common.Vec3
	found := false
	ecs.ForEach2(n.w, component.TargetTagComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.TargetTag, t *component.Transform) {
		d := common.Distance(origin, t.Position)
		if d < best {
			best = d
			pos = t.Position
			found = true
		}
	})
	return pos, found
}

// navDestination forwards destinations to the entity's NavAgent.
type navDestination struct {
	w *ecs.World
	e ecs.Entity
}

func (n navDestination) SetDestination(point common.Vec3) {
	if nav, ok := ecs.Get(n.w, n.e, component.NavAgentComponent.Kind()); ok {
		nav.SetDestination(point)
	}
}

// physicsQueries serves sensing and ground probes from the physics world.
type physicsQueries struct {
	pw *ecs.PhysicsWorld
}

func (q physicsQueries) IsWithinRadius(origin common.Vec3, radius float64, filter agent.Filter) bool {
	return q.pw.IsWithinRadius(origin, radius, uint32(filter))
}

func (q physicsQueries) RaycastDown(from common.Vec3, filter agent.Filter) bool {
	return q.pw.RaycastDown(from, uint32(filter))
}

// timerScheduler runs agent callbacks on the world's timer queue.
type timerScheduler struct {
	timers *ecs.Timers
}

func (s timerScheduler) After(delay time.Duration, fn func()) agent.TimerHandle {
	return s.timers.After(delay, fn)
}
