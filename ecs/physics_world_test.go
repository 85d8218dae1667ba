package ecs

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTarget     uint32 = 1
	testGround     uint32 = 2
	testProjectile uint32 = 4
)

func newTestPhysics(t *testing.T) (*World, *PhysicsWorld) {
	t.Helper()
	w := NewWorld()
	pw := NewPhysicsWorld(0, log.New(io.Discard))
	w.SetPhysicsWorld(pw)
	return w, pw
}

func TestIsWithinRadiusHonoursFilterAndDistance(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	require.NotNil(t, pw.AddTarget(target, common.Vec3{X: 5}, 0.5, 2, testTarget, testProjectile))

	origin := common.Vec3{}
	assert.True(t, pw.IsWithinRadius(origin, 6, testTarget))
	assert.True(t, pw.IsWithinRadius(origin, 4.5, testTarget), "distance is measured to the collider surface")
	assert.False(t, pw.IsWithinRadius(origin, 4.4, testTarget))
	assert.False(t, pw.IsWithinRadius(origin, 6, testGround), "other layers are invisible")
	assert.False(t, pw.IsWithinRadius(origin, 0, testTarget))
}

func TestIsWithinRadiusIncludesElevation(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{X: 3, Y: 0}, 0.5, 1, testTarget, testProjectile)

	// 2.5 planar, 4 vertical above the top of the collider
	above := common.Vec3{Y: 5}
	assert.False(t, pw.IsWithinRadius(above, 4, testTarget))
	assert.True(t, pw.IsWithinRadius(above, 5, testTarget))
}

func TestSyncBodyIsVisibleBeforeStep(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{X: 50}, 0.5, 2, testTarget, testProjectile)

	require.False(t, pw.IsWithinRadius(common.Vec3{}, 5, testTarget))
	pw.SyncBody(target, common.Vec3{X: 2})
	assert.True(t, pw.IsWithinRadius(common.Vec3{}, 5, testTarget))

	pw.SyncBody(target, common.Vec3{X: -40})
	assert.False(t, pw.IsWithinRadius(common.Vec3{}, 5, testTarget), "old location is no longer indexed")
	assert.True(t, pw.IsWithinRadius(common.Vec3{X: -38}, 2, testTarget))

	pw.SyncBody(target, common.Vec3{X: -40, Y: 6})
	assert.False(t, pw.IsWithinRadius(common.Vec3{X: -40}, 2, testTarget), "elevation follows the sync")
}

func TestIsWithinRadiusFromInsideCollider(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{X: 0.1}, 1, 2, testTarget, testProjectile)

	assert.True(t, pw.IsWithinRadius(common.Vec3{Y: 1}, 0.01, testTarget))
}

func TestRaycastDownElevationWindow(t *testing.T) {
	w, pw := newTestPhysics(t)
	pw.AddGround(w.CreateEntity(), -5, -5, 5, 5, 0, testGround)
	pw.AddGround(w.CreateEntity(), 10, -5, 20, 5, 3, testGround)

	assert.True(t, pw.RaycastDown(common.Vec3{Y: 1}, testGround))
	assert.False(t, pw.RaycastDown(common.Vec3{X: 7, Y: 1}, testGround), "gap between patches")
	assert.False(t, pw.RaycastDown(common.Vec3{Y: 1}, testTarget), "filter excludes ground")
	assert.False(t, pw.RaycastDown(common.Vec3{X: 15, Y: 1}, testGround), "ground above the probe")
	assert.True(t, pw.RaycastDown(common.Vec3{X: 15, Y: 4}, testGround))
	assert.False(t, pw.RaycastDown(common.Vec3{Y: 1 + DefaultProbeDepth + 0.5}, testGround), "ground below probe depth")

	elev, ok := pw.GroundElevation(common.Vec3{X: 12, Y: -100}, testGround)
	require.True(t, ok)
	assert.Equal(t, 3.0, elev)
}

func TestGroundDoesNotCollideWithTargets(t *testing.T) {
	w, pw := newTestPhysics(t)
	pw.AddGround(w.CreateEntity(), -5, -5, 5, 5, 0, testGround)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{}, 0.5, 2, testTarget, testProjectile)

	assert.Empty(t, pw.Step(1.0/60))
	body, ok := pw.Body(target)
	require.True(t, ok)
	assert.Equal(t, 0.0, body.Position().X)
}

func TestProjectileHitsTarget(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{X: 2}, 0.5, 2, testTarget, testProjectile)

	proj := w.CreateEntity()
	pw.AddProjectile(proj, common.Vec3{Y: 1}, common.Vec3{X: 30}, 1, 0.25, testProjectile, testTarget)

	var hits []ProjectileHit
	for i := 0; i < 30 && len(hits) == 0; i++ {
		hits = pw.Step(1.0 / 60)
	}
	require.Len(t, hits, 1)
	assert.Equal(t, ProjectileHit{Projectile: proj, Target: target}, hits[0])
}

func TestProjectileOverheadMisses(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{X: 2}, 0.5, 2, testTarget, testProjectile)

	proj := w.CreateEntity()
	pw.AddProjectile(proj, common.Vec3{Y: 10}, common.Vec3{X: 30}, 1, 0.25, testProjectile, testTarget)

	for i := 0; i < 30; i++ {
		assert.Empty(t, pw.Step(1.0/60))
	}
}

func TestRemoveBody(t *testing.T) {
	w, pw := newTestPhysics(t)
	target := w.CreateEntity()
	pw.AddTarget(target, common.Vec3{X: 1}, 0.5, 2, testTarget, testProjectile)
	ground := w.CreateEntity()
	pw.AddGround(ground, -5, -5, 5, 5, 0, testGround)

	pw.RemoveBody(target)
	pw.RemoveBody(ground)

	_, ok := pw.Body(target)
	assert.False(t, ok)
	assert.False(t, pw.IsWithinRadius(common.Vec3{}, 5, testTarget))
	assert.False(t, pw.RaycastDown(common.Vec3{Y: 1}, testGround))
}
