package prefabs

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/milk9111/parrot/agent"
	"github.com/milk9111/parrot/common"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownLayer = errors.New("prefabs: unknown layer")
	ErrInvalidLayer = errors.New("prefabs: invalid layer")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Layers names the collision categories of an arena.
type Layers map[string]uint32

// Mask ORs the named layers together.
func (l Layers) Mask(names ...string) (uint32, error) {
	var mask uint32
	for _, name := range names {
		bit, ok := l[name]
		if !ok {
			return 0, fmt.Errorf("%w %q (known: %v)", ErrUnknownLayer, name, l.names())
		}
		mask |= bit
	}
	return mask, nil
}

// Validate rejects empty layers and layers that use the query bit.
func (l Layers) Validate() error {
	for _, name := range l.names() {
		bit := l[name]
		switch {
		case bit == 0:
			return fmt.Errorf("%w %q: no category bits", ErrInvalidLayer, name)
		case bit&common.QueryLayer != 0:
			return fmt.Errorf("%w %q: bit 31 is reserved for queries", ErrInvalidLayer, name)
		}
	}
	return nil
}

func (l Layers) names() []string {
	out := make([]string, 0, len(l))
	for k := range l {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type RectSpec struct {
	MinX float64 `yaml:"min_x"`
	MinZ float64 `yaml:"min_z"`
	MaxX float64 `yaml:"max_x"`
	MaxZ float64 `yaml:"max_z"`
}

type GroundSpec struct {
	RectSpec  `yaml:",inline"`
	Elevation float64 `yaml:"elevation"`
}

type TargetSpec struct {
	Name     string         `yaml:"name"`
	Position Vec3Spec       `yaml:"position"`
	Radius   float64        `yaml:"radius"`
	Height   float64        `yaml:"height"`
	Script   string         `yaml:"script"`
	Params   map[string]any `yaml:"params"`
}

type ParrotPlacementSpec struct {
	Name     string   `yaml:"name"`
	Prefab   string   `yaml:"prefab"`
	Position Vec3Spec `yaml:"position"`
	Yaw      float64  `yaml:"yaw"`
	Seed     int64    `yaml:"seed"`
}

// ArenaSpec is the simulated level: walkable ground, targets and parrots.
type ArenaSpec struct {
	Name    string                `yaml:"name"`
	Bounds  RectSpec              `yaml:"bounds"`
	Layers  Layers                `yaml:"layers"`
	Ground  []GroundSpec          `yaml:"ground"`
	Targets []TargetSpec          `yaml:"targets"`
	Parrots []ParrotPlacementSpec `yaml:"parrots"`
}

func LoadArenaSpec(filename string) (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](filename)
	if err != nil {
		return nil, err
	}
	if len(spec.Layers) == 0 {
		spec.Layers = Layers{"target": 1, "ground": 2, "projectile": 4}
	}
	if err := spec.Layers.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: arena %s: %w", filename, err)
	}
	return &spec, nil
}

type CooldownSpec struct {
	Duration time.Duration `yaml:"duration"`
	Min      time.Duration `yaml:"min"`
	Max      time.Duration `yaml:"max"`
}

type ProjectileSpec struct {
	ForwardImpulse float64       `yaml:"forward_impulse"`
	UpImpulse      float64       `yaml:"up_impulse"`
	TTL            time.Duration `yaml:"ttl"`
	Radius         float64       `yaml:"radius"`
	Mass           float64       `yaml:"mass"`
}

type NavSpec struct {
	GridSize     float64 `yaml:"grid_size"`
	RepathFrames int     `yaml:"repath_frames"`
}

type FilterSpec struct {
	Target []string `yaml:"target"`
	Ground []string `yaml:"ground"`
}

// ParrotSpec is the tuning of one parrot prefab.
type ParrotSpec struct {
	Name           string         `yaml:"name"`
	SightRange     float64        `yaml:"sight_range"`
	AttackRange    float64        `yaml:"attack_range"`
	WalkPointRange float64        `yaml:"walk_point_range"`
	ReachTolerance float64        `yaml:"reach_tolerance"`
	ProbeHeight    float64        `yaml:"probe_height"`
	MoveSpeed      float64        `yaml:"move_speed"`
	Cooldown       CooldownSpec   `yaml:"cooldown"`
	Projectile     ProjectileSpec `yaml:"projectile"`
	Nav            NavSpec        `yaml:"nav"`
	Filters        FilterSpec     `yaml:"filters"`
}

func LoadParrotSpec(filename string) (*ParrotSpec, error) {
	spec, err := LoadSpec[ParrotSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// AgentConfig resolves the spec against the arena's layers and validates the
// result.
func (s *ParrotSpec) AgentConfig(layers Layers) (agent.Config, error) {
	targetNames := s.Filters.Target
	if len(targetNames) == 0 {
		targetNames = []string{"target"}
	}
	groundNames := s.Filters.Ground
	if len(groundNames) == 0 {
		groundNames = []string{"ground"}
	}
	targetMask, err := layers.Mask(targetNames...)
	if err != nil {
		return agent.Config{}, fmt.Errorf("prefabs: parrot %s target filter: %w", s.Name, err)
	}
	groundMask, err := layers.Mask(groundNames...)
	if err != nil {
		return agent.Config{}, fmt.Errorf("prefabs: parrot %s ground filter: %w", s.Name, err)
	}

	cfg := agent.Config{
		SightRange:     s.SightRange,
		AttackRange:    s.AttackRange,
		WalkPointRange: s.WalkPointRange,
		ReachTolerance: s.ReachTolerance,
		ProbeHeight:    s.ProbeHeight,
		Cooldown: agent.Cooldown{
			Duration: s.Cooldown.Duration,
			Min:      s.Cooldown.Min,
			Max:      s.Cooldown.Max,
		},
		ForwardImpulse: s.Projectile.ForwardImpulse,
		UpImpulse:      s.Projectile.UpImpulse,
		TargetFilter:   agent.Filter(targetMask),
		GroundFilter:   agent.Filter(groundMask),
	}.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return agent.Config{}, fmt.Errorf("prefabs: parrot %s: %w", s.Name, err)
	}
	return cfg, nil
}
