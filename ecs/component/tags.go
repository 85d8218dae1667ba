package component

// TargetTag marks entities parrots sense, chase and shoot at.
type TargetTag struct {
	Name string
}

var TargetTagComponent = NewComponent[TargetTag]()

type ParrotTag struct{}

var ParrotTagComponent = NewComponent[ParrotTag]()
