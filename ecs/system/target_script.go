package system

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/parrot/ecs"
	"github.com/milk9111/parrot/ecs/component"
	"github.com/milk9111/parrot/prefabs"
)

const targetDispatchScript = `
update(__engine, __state, __t)
`

type targetScriptRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
	failed     bool
}

// TargetScriptSystem moves targets with tengo scripts. A script defines
// update(engine, state, t); engine exposes position() returning [x, z] and
// set_position(x, z). state persists across calls and starts as the
// component's params.
type TargetScriptSystem struct {
	logger      *log.Logger
	scriptCache map[ecs.Entity]*targetScriptRuntime
}

func NewTargetScriptSystem(logger *log.Logger) *TargetScriptSystem {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "script"})
	}
	return &TargetScriptSystem{
		logger:      logger,
		scriptCache: map[ecs.Entity]*targetScriptRuntime{},
	}
}

func (s *TargetScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	t := w.Elapsed().Seconds()
	live := make(map[ecs.Entity]struct{})
	ecs.ForEach2(w, component.TargetScriptComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, sc *component.TargetScript, tr *component.Transform) {
		live[e] = struct{}{}
		rt, err := s.runtime(e, sc)
		if err != nil {
			s.logger.Error("load target script", "entity", e, "path", sc.Path, "err", err)
			return
		}
		if rt.failed {
			return
		}
		if err := rt.run(buildTargetScriptEngine(tr), t); err != nil {
			// A broken script would log every tick; report once and freeze the target.
			rt.failed = true
			s.logger.Error("target script update", "entity", e, "path", sc.Path, "err", err)
		}
	})

	for e := range s.scriptCache {
		if _, ok := live[e]; !ok {
			delete(s.scriptCache, e)
		}
	}
}

// Reset drops every compiled script so edited sources are picked up.
func (s *TargetScriptSystem) Reset() {
	if s == nil {
		return
	}
	s.scriptCache = map[ecs.Entity]*targetScriptRuntime{}
}

func (s *TargetScriptSystem) runtime(e ecs.Entity, sc *component.TargetScript) (*targetScriptRuntime, error) {
	if sc == nil || strings.TrimSpace(sc.Path) == "" {
		return nil, fmt.Errorf("empty script path")
	}
	if rt, ok := s.scriptCache[e]; ok && rt != nil && rt.scriptPath == sc.Path {
		return rt, nil
	}

	rt, err := compileTargetScript(sc.Path, sc.Params)
	if err != nil {
		return nil, err
	}
	s.scriptCache[e] = rt
	return rt, nil
}

func compileTargetScript(path string, params map[string]any) (*targetScriptRuntime, error) {
	scriptBytes, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}

	src := string(scriptBytes) + "\n" + targetDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__t", 0.0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	state := &tengo.Map{Value: map[string]tengo.Object{}}
	for k, v := range params {
		obj, err := tengo.FromInterface(v)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", k, err)
		}
		state.Value[k] = obj
	}

	return &targetScriptRuntime{
		scriptPath: path,
		compiled:   compiled,
		stateData:  state,
	}, nil
}

func (rt *targetScriptRuntime) run(engine *tengo.ImmutableMap, t float64) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__t", t); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildTargetScriptEngine(tr *component.Transform) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: tr.Position.X}, &tengo.Float{Value: tr.Position.Z}}}, nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, ok := objectAsFloat(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		z, ok := objectAsFloat(args[1])
		if !ok {
			return tengo.FalseValue, nil
		}
		tr.Position.X = x
		tr.Position.Z = z
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}
