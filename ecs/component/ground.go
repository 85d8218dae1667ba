package component

// Ground is a walkable rectangle on the XZ plane at a fixed elevation.
type Ground struct {
	MinX      float64
	MinZ      float64
	MaxX      float64
	MaxZ      float64
	Elevation float64
}

var GroundComponent = NewComponent[Ground]()

func (g Ground) Contains(x, z float64) bool {
	return x >= g.MinX && x <= g.MaxX && z >= g.MinZ && z <= g.MaxZ
}

// ArenaBounds is the playable area. Navigation grids cover it.
type ArenaBounds struct {
	MinX float64
	MinZ float64
	MaxX float64
	MaxZ float64
}

var ArenaBoundsComponent = NewComponent[ArenaBounds]()

func (b ArenaBounds) Width() float64 {
	return b.MaxX - b.MinX
}

func (b ArenaBounds) Depth() float64 {
	return b.MaxZ - b.MinZ
}
