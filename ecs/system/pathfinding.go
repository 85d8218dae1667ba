package system

import (
	"container/heap"
	"math"

	"github.com/milk9111/parrot/ecs/component"
)

type gridPos struct {
	x int
	z int
}

// navGrid is a walkability grid laid over the arena bounds.
type navGrid struct {
	originX  float64
	originZ  float64
	gridSize float64
	w        int
	h        int
	blocked  []bool
}

func newNavGrid(bounds component.ArenaBounds, gridSize float64, walkable func(x, z float64) bool) *navGrid {
	gridW := int(math.Ceil(bounds.Width() / gridSize))
	gridH := int(math.Ceil(bounds.Depth() / gridSize))
	if gridW <= 0 || gridH <= 0 {
		return nil
	}

	g := &navGrid{
		originX:  bounds.MinX,
		originZ:  bounds.MinZ,
		gridSize: gridSize,
		w:        gridW,
		h:        gridH,
		blocked:  make([]bool, gridW*gridH),
	}
	for z := 0; z < gridH; z++ {
		for x := 0; x < gridW; x++ {
			cx, cz := g.center(gridPos{x: x, z: z})
			g.blocked[z*gridW+x] = !walkable(cx, cz)
		}
	}
	return g
}

func (g *navGrid) coord(x, z float64) gridPos {
	gx := int(math.Floor((x - g.originX) / g.gridSize))
	gz := int(math.Floor((z - g.originZ) / g.gridSize))
	if gx < 0 {
		gx = 0
	}
	if gz < 0 {
		gz = 0
	}
	if gx >= g.w {
		gx = g.w - 1
	}
	if gz >= g.h {
		gz = g.h - 1
	}
	return gridPos{x: gx, z: gz}
}

func (g *navGrid) center(p gridPos) (float64, float64) {
	half := g.gridSize * 0.5
	return g.originX + float64(p.x)*g.gridSize + half, g.originZ + float64(p.z)*g.gridSize + half
}

func (g *navGrid) toWorld(path []gridPos) []component.PathNode {
	if len(path) == 0 {
		return nil
	}
	out := make([]component.PathNode, 0, len(path))
	for _, p := range path {
		x, z := g.center(p)
		out = append(out, component.PathNode{X: x, Z: z})
	}
	return out
}

func astarPath(start, goal gridPos, blocked []bool, gridW, gridH int) ([]gridPos, []gridPos) {
	if start.x < 0 || start.z < 0 || goal.x < 0 || goal.z < 0 {
		return nil, nil
	}
	if start.x >= gridW || start.z >= gridH || goal.x >= gridW || goal.z >= gridH {
		return nil, nil
	}
	if blocked[goal.z*gridW+goal.x] {
		return nil, nil
	}

	open := &openSet{}
	heap.Init(open)

	cameFrom := make([]int, gridW*gridH)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	gScore := make([]float64, gridW*gridH)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	startIdx := start.z*gridW + start.x
	goalIdx := goal.z*gridW + goal.x
	gScore[startIdx] = 0
	heap.Push(open, &openItem{pos: start, f: heuristic(start, goal), g: 0})

	visited := make([]gridPos, 0, 64)
	closed := make([]bool, gridW*gridH)

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		cur := current.pos
		curIdx := cur.z*gridW + cur.x
		if closed[curIdx] {
			continue
		}
		closed[curIdx] = true

		visited = append(visited, cur)

		if curIdx == goalIdx {
			return reconstructPath(cameFrom, gridW, startIdx, goalIdx), visited
		}

		for _, n := range neighbors(cur, gridW, gridH) {
			idx := n.z*gridW + n.x
			if blocked[idx] {
				continue
			}
			tentativeG := gScore[curIdx] + 1
			if tentativeG < gScore[idx] {
				cameFrom[idx] = curIdx
				gScore[idx] = tentativeG
				f := tentativeG + heuristic(n, goal)
				heap.Push(open, &openItem{pos: n, f: f, g: tentativeG})
			}
		}
	}

	return nil, visited
}

func reconstructPath(cameFrom []int, gridW int, startIdx, goalIdx int) []gridPos {
	if startIdx == goalIdx {
		return []gridPos{{x: startIdx % gridW, z: startIdx / gridW}}
	}
	if goalIdx < 0 || goalIdx >= len(cameFrom) || cameFrom[goalIdx] == -1 {
		return nil
	}

	path := make([]gridPos, 0, 32)
	cur := goalIdx
	for cur != -1 {
		path = append(path, gridPos{x: cur % gridW, z: cur / gridW})
		if cur == startIdx {
			break
		}
		cur = cameFrom[cur]
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func neighbors(p gridPos, gridW, gridH int) []gridPos {
	out := make([]gridPos, 0, 4)
	if p.x > 0 {
		out = append(out, gridPos{x: p.x - 1, z: p.z})
	}
	if p.x < gridW-1 {
		out = append(out, gridPos{x: p.x + 1, z: p.z})
	}
	if p.z > 0 {
		out = append(out, gridPos{x: p.x, z: p.z - 1})
	}
	if p.z < gridH-1 {
		out = append(out, gridPos{x: p.x, z: p.z + 1})
	}
	return out
}

func heuristic(a, b gridPos) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.z-b.z))
}

type openItem struct {
	pos   gridPos
	f     float64
	g     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
