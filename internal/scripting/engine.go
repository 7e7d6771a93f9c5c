package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM that backs scripted system definitions
// and scripted entity methods. Single-goroutine access only (the tick loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	entities map[*ecs.Entity]*lua.LUserData
	systems  map[*ecs.System]*lua.LUserData
	tables   map[*ecs.Definition]*lua.LTable
}

// NewEngine creates a Lua VM with the entity and system bindings installed.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:       vm,
		log:      log,
		entities: make(map[*ecs.Entity]*lua.LUserData),
		systems:  make(map[*ecs.System]*lua.LUserData),
		tables:   make(map[*ecs.Definition]*lua.LTable),
	}
	e.registerEntityType()
	e.registerSystemType()
	return e
}

func (e *Engine) Close() {
	e.vm.Close()
}

// LoadLibs runs every .lua file in dir as shared library code, so helpers
// defined there are visible to system scripts. A missing dir is skipped.
func (e *Engine) LoadLibs(dir string) error {
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
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua library", zap.String("file", path))
	}
	return nil
}

// LoadFile runs a system script and builds a definition from the table it
// returns. The definition name defaults to the file name without extension.
func (e *Engine) LoadFile(path string) (*ecs.Definition, error) {
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	def, err := e.define(name, fn)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", path), zap.String("system", def.Name))
	return def, nil
}

// LoadString is LoadFile for in-memory sources.
func (e *Engine) LoadString(name, src string) (*ecs.Definition, error) {
	fn, err := e.vm.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	def, err := e.define(name, fn)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return def, nil
}

func (e *Engine) define(name string, chunk *lua.LFunction) (*ecs.Definition, error) {
	e.vm.Push(chunk)
	if err := e.vm.PCall(0, 1, nil); err != nil {
		return nil, err
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script must return a table, got %s", ret.Type())
	}
	return e.definition(name, tbl)
}

// Forget drops the cached userdata of an entity that left the pool.
func (e *Engine) Forget(ent *ecs.Entity) {
	delete(e.entities, ent)
}

// DoString runs a chunk in the engine VM. Used by hosts and tests to seed
// globals.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// call runs fn protected. A Lua error is logged and re-raised as a Go panic
// so it reaches the caller of the pool operation that triggered it.
func (e *Engine) call(what string, fn *lua.LFunction, nret int, args ...lua.LValue) lua.LValue {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    nret,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua callback error", zap.String("callback", what), zap.Error(err))
		panic(err)
	}
	if nret == 0 {
		return lua.LNil
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret
}
