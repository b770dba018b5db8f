package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/data"
)

// Engine wraps a gopher-lua VM holding the agent tuning scripts. Reload
// builds a fresh VM from the script directory and swaps it in whole, so a
// broken script never half-applies; the read lock keeps in-flight calls off
// a VM being closed.
type Engine struct {
	mu  sync.RWMutex
	vm  *lua.LState
	dir string
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm, err := buildVM(scriptsDir, log)
	if err != nil {
		return nil, err
	}
	return &Engine{vm: vm, dir: scriptsDir, log: log}, nil
}

func buildVM(dir string, log *zap.Logger) (*lua.LState, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := loadDir(vm, dir, log); err != nil {
		vm.Close()
		return nil, err
	}
	return vm, nil
}

// loadDir loads all .lua files in a directory.
func loadDir(vm *lua.LState, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reload rebuilds the VM from the script directory and swaps it in. On any
// script error the current VM stays in place.
func (e *Engine) Reload() error {
	vm, err := buildVM(e.dir, e.log)
	if err != nil {
		return fmt.Errorf("reload scripts: %w", err)
	}
	e.mu.Lock()
	old := e.vm
	e.vm = vm
	e.mu.Unlock()
	old.Close()
	e.log.Info("lua scripts reloaded", zap.String("dir", e.dir))
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}

// AgentTuning calls the Lua get_agent_tuning function with the archetype's
// base values and returns the archetype with any returned overrides applied.
// A missing function, a nil return, or a call error all leave the base
// values untouched.
func (e *Engine) AgentTuning(base data.Archetype) data.Archetype {
	e.mu.RLock()
	defer e.mu.RUnlock()

	fn := e.vm.GetGlobal("get_agent_tuning")
	if fn == lua.LNil {
		return base
	}

	t := e.vm.NewTable()
	t.RawSetString("archetype", lua.LString(base.Name))
	t.RawSetString("speed", lua.LNumber(base.Speed))
	t.RawSetString("collider_radius", lua.LNumber(base.ColliderRadius))
	t.RawSetString("wander_radius", lua.LNumber(base.WanderRadius))
	t.RawSetString("detection_radius", lua.LNumber(base.DetectionRadius))
	t.RawSetString("step_budget", lua.LNumber(base.StepBudget))
	t.RawSetString("aggro_threshold", lua.LNumber(base.AggroThreshold))
	t.RawSetString("cooldown_seconds", lua.LNumber(base.CooldownSeconds))
	t.RawSetString("rage_seconds", lua.LNumber(base.RageSeconds))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua get_agent_tuning error", zap.Error(err))
		return base
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return base
	}

	out := base
	overrideFloat(rt, "speed", &out.Speed)
	overrideFloat(rt, "collider_radius", &out.ColliderRadius)
	overrideFloat(rt, "wander_radius", &out.WanderRadius)
	overrideInt(rt, "detection_radius", &out.DetectionRadius)
	overrideInt(rt, "step_budget", &out.StepBudget)
	overrideInt(rt, "aggro_threshold", &out.AggroThreshold)
	overrideFloat(rt, "cooldown_seconds", &out.CooldownSeconds)
	overrideFloat(rt, "rage_seconds", &out.RageSeconds)
	return out
}

func overrideFloat(t *lua.LTable, key string, dst *float64) {
	if v := t.RawGetString(key); v != lua.LNil {
		*dst = float64(lua.LVAsNumber(v))
	}
}

func overrideInt(t *lua.LTable, key string, dst *int) {
	if v := t.RawGetString(key); v != lua.LNil {
		*dst = int(lua.LVAsNumber(v))
	}
}
