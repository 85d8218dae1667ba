package system

import (
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
)

const (
	defaultPathGridSize     = 1.0
	defaultPathRepathFrames = 15
	defaultMoveSpeed        = 3.5
	arriveEpsilon           = 1e-6
)

// NavigationSystem plans grid paths toward NavAgent destinations and steers
// transforms along them.
type NavigationSystem struct {
	logger *log.Logger
	// GroundMask selects the ground that makes a grid cell walkable.
	GroundMask uint32

	grids       map[float64]*navGrid
	groundCount int
	bounds      component.ArenaBounds
}

func NewNavigationSystem(logger *log.Logger, groundMask uint32) *NavigationSystem {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "nav"})
	}
	return &NavigationSystem{
		logger:     logger,
		GroundMask: groundMask,
		grids:      make(map[float64]*navGrid),
	}
}

func (ns *NavigationSystem) Update(w *ecs.World) {
	if ns == nil || w == nil {
		return
	}

	bounds, hasBounds := arenaBounds(w)
	ns.invalidate(w, bounds)
	dt := w.DeltaTime().Seconds()
	pw := w.PhysicsWorld()

	ecs.ForEach2(w, component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, nav *component.NavAgent, t *component.Transform) {
		if !nav.HasDestination {
			return
		}
		if nav.GridSize <= 0 {
			nav.GridSize = defaultPathGridSize
		}
		if nav.RepathFrames <= 0 {
			nav.RepathFrames = defaultPathRepathFrames
		}
		if nav.Speed <= 0 {
			nav.Speed = defaultMoveSpeed
		}
		nav.FrameCounter++

		var grid *navGrid
		if hasBounds {
			grid = ns.grid(pw, bounds, nav.GridSize)
		}

		dest := nav.Destination
		replan := nav.Path == nil || nav.FrameCounter%nav.RepathFrames == 0
		if grid != nil {
			goal := grid.coord(dest.X, dest.Z)
			if goal.x != nav.LastGoalX || goal.z != nav.LastGoalZ {
				replan = true
			}
		} else if nav.Dirty {
			replan = true
		}
		if nav.Arrived() && common.PlanarDistance(t.Position, dest) > arriveEpsilon {
			replan = true
		}

		if replan {
			ns.plan(e, nav, grid, t.Position)
		} else if n := len(nav.Path); n > 0 {
			nav.Path[n-1] = component.PathNode{X: dest.X, Z: dest.Z}
		}
		nav.Dirty = false

		ns.steer(nav, t, dt, pw)
	})
}

func (ns *NavigationSystem) plan(e ecs.Entity, nav *component.NavAgent, grid *navGrid, from common.Vec3) {
	dest := nav.Destination
	final := component.PathNode{X: dest.X, Z: dest.Z}
	nav.PathIndex = 0

	if grid == nil {
		nav.Path = []component.PathNode{final}
		nav.Visited = nil
		return
	}

	start := grid.coord(from.X, from.Z)
	goal := grid.coord(dest.X, dest.Z)
	nav.LastGoalX = goal.x
	nav.LastGoalZ = goal.z

	path, visited := astarPath(start, goal, grid.blocked, grid.w, grid.h)
	nav.Visited = grid.toWorld(visited)
	if path == nil {
		ns.logger.Debug("no path, walking straight", "entity", e, "to", dest)
		nav.Path = []component.PathNode{final}
		return
	}

	nodes := grid.toWorld(path)
	// The first node is the cell the agent already stands in.
	if len(nodes) > 1 {
		nodes = nodes[1:]
	}
	nodes[len(nodes)-1] = final
	nav.Path = nodes
}

func (ns *NavigationSystem) steer(nav *component.NavAgent, t *component.Transform, dt float64, pw *ecs.PhysicsWorld) {
	start := t.Position
	step := nav.Speed * dt
	for step > 0 && !nav.Arrived() {
		node := nav.Path[nav.PathIndex]
		dx := node.X - t.Position.X
		dz := node.Z - t.Position.Z
		d := math.Hypot(dx, dz)
		if d <= step {
			t.Position.X = node.X
			t.Position.Z = node.Z
			step -= d
			nav.PathIndex++
			continue
		}
		t.Position.X += dx / d * step
		t.Position.Z += dz / d * step
		step = 0
	}

	if common.PlanarDistance(start, t.Position) <= arriveEpsilon {
		return
	}
	if yaw, ok := common.YawTowards(start, t.Position); ok {
		t.Yaw = yaw
	}
	if elev, ok := pw.GroundElevation(t.Position, ns.GroundMask); ok {
		t.Position.Y = elev
	}
}

func (ns *NavigationSystem) grid(pw *ecs.PhysicsWorld, bounds component.ArenaBounds, gridSize float64) *navGrid {
	if g, ok := ns.grids[gridSize]; ok {
		return g
	}
	g := newNavGrid(bounds, gridSize, func(x, z float64) bool {
		_, ok := pw.GroundElevation(common.Vec3{X: x, Z: z}, ns.GroundMask)
		return ok
	})
	ns.grids[gridSize] = g
	return g
}

// invalidate drops cached grids when the arena's ground or bounds change.
func (ns *NavigationSystem) invalidate(w *ecs.World, bounds component.ArenaBounds) {
	count := len(ecs.Query(w, component.GroundComponent.Kind()))
	if count == ns.groundCount && bounds == ns.bounds {
		return
	}
	ns.groundCount = count
	ns.bounds = bounds
	ns.grids = make(map[float64]*navGrid)
}

func arenaBounds(w *ecs.World) (component.ArenaBounds, bool) {
	e, ok := ecs.First(w, component.ArenaBoundsComponent.Kind())
	if !ok {
		return component.ArenaBounds{}, false
	}
	b, ok := ecs.Get(w, e, component.ArenaBoundsComponent.Kind())
	if !ok {
		return component.ArenaBounds{}, false
	}
	return *b, true
}
