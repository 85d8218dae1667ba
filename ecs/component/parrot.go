package component

import (
	"time"

	"github.com/milk9111/parrot/agent"
)

// ProjectileConfig describes what a parrot fires.
type ProjectileConfig struct {
	TTL    time.Duration
	Radius float64
	Mass   float64
}

// Parrot is the AI agent component. Controller is created lazily by the AI
// system and closed when the entity is destroyed.
type Parrot struct {
	Name       string
	Config     agent.Config
	Projectile ProjectileConfig
	Seed       int64

	Controller *agent.Controller
	Mode       agent.Mode
}

var ParrotComponent = NewComponent[Parrot]()
