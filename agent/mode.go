package agent

// Mode is the behavior an agent runs for a single tick.
type Mode uint8

const (
	ModePatrol Mode = iota
	ModeChase
	ModeAttack
)

func (m Mode) String() string {
	switch m {
	case ModePatrol:
		return "patrol"
	case ModeChase:
		return "chase"
	case ModeAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// DeriveMode maps the two sensing flags to a mode. A target inside the attack
// radius but outside the sight radius only happens when attack_range exceeds
// sight_range; the agent does not attack what it cannot see, so it patrols.
func DeriveMode(inAttackRange, inSight bool) Mode {
	switch {
	case !inAttackRange && !inSight:
		return ModePatrol
	case !inAttackRange && inSight:
		return ModeChase
	case inAttackRange && inSight:
		return ModeAttack
	default:
		return ModePatrol
	}
}
