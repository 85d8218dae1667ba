package component

// Projectile is a fired shot. The cp body carries its planar motion; the
// vertical component is integrated separately against gravity.
type Projectile struct {
	Owner            uint64
	VerticalVelocity float64
	Radius           float64
}

var ProjectileComponent = NewComponent[Projectile]()
