package agent

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/parrot/common"
)

// Collaborators are the services a controller issues commands to. Every field
// except Target, Rand and Logger is required.
type Collaborators struct {
	Body      Body
	Target    Target
	Navigator Navigator
	Sensor    SpatialQuery
	Ground    GroundProbe
	Spawner   ProjectileSpawner
	Scheduler Scheduler
	Rand      Rand
	Logger    *log.Logger
}

// State is a read-only snapshot of a controller.
type State struct {
	Mode          Mode
	InSight       bool
	InAttackRange bool

	PatrolTarget  common.Vec3
	PatrolPending bool

	CoolingDown  bool
	LastCooldown time.Duration

	Ticks      uint64
	ShotsFired int
}

// Controller decides and executes one of Patrol, Chase or Attack per tick.
// It is not safe for concurrent use; the host loop owns it.
type Controller struct {
	cfg Config

	body      Body
	target    Target
	nav       Navigator
	sensor    SpatialQuery
	ground    GroundProbe
	spawner   ProjectileSpawner
	scheduler Scheduler
	rng       Rand
	logger    *log.Logger

	mode          Mode
	inSight       bool
	inAttackRange bool

	patrolTarget  common.Vec3
	patrolPending bool

	coolingDown  bool
	lastCooldown time.Duration
	reset        TimerHandle

	ticks      uint64
	shotsFired int
	closed     bool
}

func New(cfg Config, c Collaborators) (*Controller, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case c.Body == nil:
		return nil, fmt.Errorf("%w: missing body", ErrInvalidConfig)
	case c.Navigator == nil:
		return nil, fmt.Errorf("%w: missing navigator", ErrInvalidConfig)
	case c.Sensor == nil:
		return nil, fmt.Errorf("%w: missing spatial query", ErrInvalidConfig)
	case c.Ground == nil:
		return nil, fmt.Errorf("%w: missing ground probe", ErrInvalidConfig)
	case c.Spawner == nil:
		return nil, fmt.Errorf("%w: missing projectile spawner", ErrInvalidConfig)
	case c.Scheduler == nil:
		return nil, fmt.Errorf("%w: missing scheduler", ErrInvalidConfig)
	}

	rng := c.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := c.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "ai"})
	}

	return &Controller{
		cfg:       cfg,
		body:      c.Body,
		target:    c.Target,
		nav:       c.Navigator,
		sensor:    c.Sensor,
		ground:    c.Ground,
		spawner:   c.Spawner,
		scheduler: c.Scheduler,
		rng:       rng,
		logger:    logger,
		mode:      ModePatrol,
	}, nil
}

func (c *Controller) Config() Config {
	return c.cfg
}

// BindTarget replaces the sensed target reference.
func (c *Controller) BindTarget(t Target) {
	c.target = t
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) State() State {
	return State{
		Mode:          c.mode,
		InSight:       c.inSight,
		InAttackRange: c.inAttackRange,
		PatrolTarget:  c.patrolTarget,
		PatrolPending: c.patrolPending,
		CoolingDown:   c.coolingDown,
		LastCooldown:  c.lastCooldown,
		Ticks:         c.ticks,
		ShotsFired:    c.shotsFired,
	}
}

// Tick senses the target, derives the mode and runs it. dt is informational;
// all timing goes through the Scheduler.
func (c *Controller) Tick(dt time.Duration) Mode {
	if c.closed {
		return c.mode
	}
	c.ticks++

	pos := c.body.Position()
	c.inSight = c.sensor.IsWithinRadius(pos, c.cfg.SightRange, c.cfg.TargetFilter)
	c.inAttackRange = c.sensor.IsWithinRadius(pos, c.cfg.AttackRange, c.cfg.TargetFilter)

	next := DeriveMode(c.inAttackRange, c.inSight)

	var targetPos common.Vec3
	if next != ModePatrol {
		p, ok := c.resolveTarget()
		if !ok {
			c.logger.Warn("target in range but unresolvable, patrolling", "mode", next, "tick", c.ticks)
			next = ModePatrol
		}
		targetPos = p
	}

	if next != c.mode {
		c.logger.Debug("mode changed", "from", c.mode, "to", next, "tick", c.ticks, "dt", dt)
		c.mode = next
	}

	switch c.mode {
	case ModePatrol:
		c.patrol(pos)
	case ModeChase:
		c.chase(targetPos)
	case ModeAttack:
		c.attack(pos, targetPos)
	}
	return c.mode
}

func (c *Controller) resolveTarget() (common.Vec3, bool) {
	if c.target == nil {
		return common.Vec3{}, false
	}
	return c.target.Position()
}

func (c *Controller) patrol(pos common.Vec3) {
	if !c.patrolPending {
		c.searchPatrolPoint(pos)
	}
	if !c.patrolPending {
		return
	}

	c.nav.SetDestination(c.patrolTarget)

	if common.PlanarDistance(pos, c.patrolTarget) <= c.cfg.ReachTolerance {
		c.patrolPending = false
	}
}

func (c *Controller) searchPatrolPoint(pos common.Vec3) {
	r := c.cfg.WalkPointRange
	candidate := common.Vec3{
		X: pos.X + (c.rng.Float64()*2-1)*r,
		Y: pos.Y,
		Z: pos.Z + (c.rng.Float64()*2-1)*r,
	}

	probe := candidate.Add(common.Up.Scale(c.cfg.ProbeHeight))
	if !c.ground.RaycastDown(probe, c.cfg.GroundFilter) {
		return
	}

	c.patrolTarget = candidate
	c.patrolPending = true
	c.logger.Debug("patrol point", "x", candidate.X, "y", candidate.Y, "z", candidate.Z)
}

func (c *Controller) chase(targetPos common.Vec3) {
	c.nav.SetDestination(targetPos)
}

func (c *Controller) attack(pos, targetPos common.Vec3) {
	c.nav.SetDestination(pos)
	c.body.LookAt(targetPos)

	if c.coolingDown {
		return
	}

	forward := c.body.Forward().Scale(c.cfg.ForwardImpulse)
	up := common.Up.Scale(c.cfg.UpImpulse)
	handle := c.spawner.Spawn(pos, forward, up)

	delay := c.nextCooldown()
	c.coolingDown = true
	c.lastCooldown = delay
	c.shotsFired++
	c.reset = c.scheduler.After(delay, c.resetAttack)

	c.logger.Debug("attack", "projectile", handle, "cooldown", delay)
}

func (c *Controller) nextCooldown() time.Duration {
	cd := c.cfg.Cooldown
	if !cd.Randomized() {
		return cd.Duration
	}
	span := float64(cd.Max - cd.Min)
	return cd.Min + time.Duration(c.rng.Float64()*span)
}

func (c *Controller) resetAttack() {
	if c.closed {
		return
	}
	c.coolingDown = false
	c.reset = nil
}

// Close cancels the pending cooldown reset. The controller ignores further
// ticks.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.reset != nil {
		c.reset.Cancel()
		c.reset = nil
	}
}
