package component

// Layer declares an entity's collision category and the categories it
// interacts with.
type Layer struct {
	Category uint32 `yaml:"category"`
	Mask     uint32 `yaml:"mask"`
}

var LayerComponent = NewComponent[Layer]()
