package component

// TargetScript drives a target's movement from a tengo script. Params seed
// the script's state map.
type TargetScript struct {
	Path   string
	Params map[string]any
}

var TargetScriptComponent = NewComponent[TargetScript]()
