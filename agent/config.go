package agent

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("agent: invalid config")

const (
	DefaultReachTolerance = 1.0
	DefaultProbeHeight    = 1.0
	DefaultForwardImpulse = 32.0
	DefaultUpImpulse      = 8.0
)

// Filter is a layer bitmask used to restrict spatial and ground queries.
type Filter uint32

// Cooldown configures the delay between attacks. Exactly one form must be
// set: a fixed Duration, or Min and Max bounds from which each attack draws a
// fresh delay uniformly.
type Cooldown struct {
	Duration time.Duration
	Min      time.Duration
	Max      time.Duration
}

func (c Cooldown) Randomized() bool {
	return c.Max > 0
}

func (c Cooldown) validate() error {
	switch {
	case c.Duration < 0 || c.Min < 0 || c.Max < 0:
		return fmt.Errorf("%w: negative cooldown (duration=%v min=%v max=%v)", ErrInvalidConfig, c.Duration, c.Min, c.Max)
	case c.Duration > 0 && (c.Min > 0 || c.Max > 0):
		return fmt.Errorf("%w: cooldown sets both duration %v and bounds [%v, %v]", ErrInvalidConfig, c.Duration, c.Min, c.Max)
	case c.Min > 0 && c.Max == 0:
		return fmt.Errorf("%w: cooldown min %v without max", ErrInvalidConfig, c.Min)
	case c.Min > c.Max:
		return fmt.Errorf("%w: cooldown bounds [%v, %v]", ErrInvalidConfig, c.Min, c.Max)
	case c.Duration == 0 && c.Max == 0:
		return fmt.Errorf("%w: cooldown not set", ErrInvalidConfig)
	}
	return nil
}

// Config is the immutable tuning of one agent. It is copied into the
// controller at construction.
type Config struct {
	SightRange     float64
	AttackRange    float64
	WalkPointRange float64

	// ReachTolerance is the planar distance at which a patrol point counts
	// as reached.
	ReachTolerance float64
	// ProbeHeight is how far above a candidate patrol point the ground probe
	// starts.
	ProbeHeight float64

	Cooldown Cooldown

	ForwardImpulse float64
	UpImpulse      float64

	TargetFilter Filter
	GroundFilter Filter
}

// WithDefaults fills zero-valued optional fields.
func (c Config) WithDefaults() Config {
	if c.ReachTolerance <= 0 {
		c.ReachTolerance = DefaultReachTolerance
	}
	if c.ProbeHeight <= 0 {
		c.ProbeHeight = DefaultProbeHeight
	}
	if c.ForwardImpulse == 0 && c.UpImpulse == 0 {
		c.ForwardImpulse = DefaultForwardImpulse
		c.UpImpulse = DefaultUpImpulse
	}
	return c
}

// Validate reports configuration errors. attack_range > sight_range is legal
// (the agent will never attack) and is left to callers to warn about.
func (c Config) Validate() error {
	if c.SightRange < 0 || c.AttackRange < 0 || c.WalkPointRange < 0 {
		return fmt.Errorf("%w: ranges must not be negative (sight=%v attack=%v walk=%v)", ErrInvalidConfig, c.SightRange, c.AttackRange, c.WalkPointRange)
	}
	return c.Cooldown.validate()
}
