package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/common"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/milk9111/parrot/prefabs"
	"github.com/milk9111/parrot/sim"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 960
	baseHeight = 960
	margin     = 24
)

// Game hosts the simulation inside ebiten's update loop and draws the arena
// from above.
type Game struct {
	sim     *sim.Sim
	watcher *prefabs.Watcher
	logger  *log.Logger

	paused bool
	frames int
}

func NewGame(s *sim.Sim, watcher *prefabs.Watcher, logger *log.Logger) *Game {
	return &Game{sim: s, watcher: watcher, logger: logger}
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.sim.Reload(); err != nil {
			g.logger.Warn("reload", "err", err)
		}
	}
	if _, err := g.sim.PollReload(g.watcher); err != nil {
		g.logger.Warn("reload", "err", err)
	}

	if g.paused {
		return nil
	}
	g.sim.Step(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	snap := g.sim.Snapshot()
	view := newViewport(snap.Bounds)

	for _, ground := range snap.Ground {
		x0, y1 := view.project(ground.MinX, ground.MinZ)
		x1, y0 := view.project(ground.MaxX, ground.MaxZ)
		clr := color.Color(colornames.Darkolivegreen)
		if ground.Elevation > 0 {
			clr = colornames.Olivedrab
		}
		vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, clr, false)
	}

	for _, t := range snap.Targets {
		x, y := view.project(t.Position.X, t.Position.Z)
		vector.DrawFilledCircle(screen, x, y, view.length(math.Max(t.Radius, 0.3)), colornames.Gold, true)
	}

	for _, p := range snap.Parrots {
		g.drawParrot(screen, view, p)
	}

	for _, pr := range snap.Projectiles {
		x, y := view.project(pr.Position.X, pr.Position.Z)
		vector.DrawFilledCircle(screen, x, y, 3+float32(pr.Position.Y), colornames.Orangered, true)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "t=%s  steps=%d  FPS: %.1f", snap.Elapsed.Truncate(time.Millisecond), snap.Steps, ebiten.ActualFPS())
	if g.paused {
		b.WriteString("  [paused]")
	}
	b.WriteString("\nspace: pause  r: reload")
	for _, p := range snap.Parrots {
		fmt.Fprintf(&b, "\n%s: %s shots=%d cooling=%v", p.Name, p.State.Mode, p.State.ShotsFired, p.State.CoolingDown)
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func (g *Game) drawParrot(screen *ebiten.Image, view viewport, p sim.ParrotView) {
	x, y := view.project(p.Position.X, p.Position.Z)

	vector.StrokeCircle(screen, x, y, view.length(p.SightRange), 1, colornames.Lightskyblue, true)
	vector.StrokeCircle(screen, x, y, view.length(p.AttackRange), 1, colornames.Salmon, true)

	px, py := x, y
	for _, node := range p.Path {
		nx, ny := view.project(node.X, node.Z)
		vector.StrokeLine(screen, px, py, nx, ny, 1, colornames.Lightgray, true)
		px, py = nx, ny
	}

	if p.State.PatrolPending {
		tx, ty := view.project(p.State.PatrolTarget.X, p.State.PatrolTarget.Z)
		vector.StrokeRect(screen, tx-3, ty-3, 6, 6, 1, colornames.White, false)
	}

	clr := modeColor(p.State.Mode)
	vector.DrawFilledCircle(screen, x, y, 6, clr, true)
	f := common.YawForward(p.Yaw)
	hx, hy := view.project(p.Position.X+f.X, p.Position.Z+f.Z)
	vector.StrokeLine(screen, x, y, hx, hy, 2, clr, true)
}

func modeColor(m agent.Mode) color.Color {
	switch m {
	case agent.ModeChase:
		return colornames.Yellow
	case agent.ModeAttack:
		return colornames.Red
	default:
		return colornames.Limegreen
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

// viewport maps the arena's XZ plane onto the screen, +Z pointing up.
type viewport struct {
	minX  float64
	maxZ  float64
	scale float64
}

func newViewport(b component.ArenaBounds) viewport {
	w := b.MaxX - b.MinX
	d := b.MaxZ - b.MinZ
	if w <= 0 || d <= 0 {
		return viewport{scale: 1}
	}
	scale := math.Min((baseWidth-2*margin)/w, (baseHeight-2*margin)/d)
	return viewport{minX: b.MinX, maxZ: b.MaxZ, scale: scale}
}

func (v viewport) project(x, z float64) (float32, float32) {
	return float32(margin + (x-v.minX)*v.scale), float32(margin + (v.maxZ-z)*v.scale)
}

func (v viewport) length(l float64) float32 {
	return float32(l * v.scale)
}
