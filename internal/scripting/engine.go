package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for entity behavior scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory and its behaviors/ subdirectory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	if err := e.loadDir(filepath.Join(scriptsDir, "behaviors")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load behavior scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory. Missing directories are
// skipped so deployments without scripts still boot.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString executes a raw chunk. Used by tests and the console.
func (e *Engine) LoadString(chunk string) error {
	return e.vm.DoString(chunk)
}

// BehaviorContext holds the pre-packed entity state passed to a behavior.
type BehaviorContext struct {
	EntityID uint64
	Name     string
	DT       float64
	X, Y     float64
	DX, DY   float64
	HP       int
	MaxHP    int
	Tags     []string
}

// Command is one action a behavior asks the engine to apply.
type Command struct {
	Type string // "set_velocity", "add_tag", "remove_tag", "deactivate"
	DX   float64
	DY   float64
	Tag  string
}

// HasBehavior reports whether a global Lua function with the given name is
// loaded.
func (e *Engine) HasBehavior(name string) bool {
	return e.vm.GetGlobal(name).Type() == lua.LTFunction
}

// RunBehavior calls the named Lua function with a context table and returns
// the command list it produced. Script errors are logged and yield no
// commands; a missing behavior is a no-op.
func (e *Engine) RunBehavior(name string, ctx BehaviorContext) []Command {
	fn := e.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("entity_id", lua.LNumber(ctx.EntityID))
	t.RawSetString("name", lua.LString(ctx.Name))
	t.RawSetString("dt", lua.LNumber(ctx.DT))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("dx", lua.LNumber(ctx.DX))
	t.RawSetString("dy", lua.LNumber(ctx.DY))
	t.RawSetString("hp", lua.LNumber(ctx.HP))
	t.RawSetString("max_hp", lua.LNumber(ctx.MaxHP))

	tagsTbl := e.vm.NewTable()
	for i, tag := range ctx.Tags {
		tagsTbl.RawSetInt(i+1, lua.LString(tag))
	}
	t.RawSetString("tags", tagsTbl)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua behavior error",
			zap.String("behavior", name),
			zap.Uint64("entity_id", ctx.EntityID),
			zap.Error(err))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []Command
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, Command{
				Type: lStr(row, "type"),
				DX:   lNum(row, "dx"),
				DY:   lNum(row, "dy"),
				Tag:  lStr(row, "tag"),
			})
		}
	})
	return cmds
}

func lStr(t *lua.LTable, key string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}
