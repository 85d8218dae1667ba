package component

import "time"

// TTL destroys its entity once Remaining has been consumed by world steps.
type TTL struct {
	Remaining time.Duration
}

var TTLComponent = NewComponent[TTL]()
