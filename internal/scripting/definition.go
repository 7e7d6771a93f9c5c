package scripting

import (
	"fmt"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
)

// Keys of a script table that configure the system rather than name events.
var reservedKeys = map[string]bool{
	"name":            true,
	"filter":          true,
	"sort":            true,
	"continuous_sort": true,
	"continuousSort":  true,
}

func (e *Engine) definition(name string, tbl *lua.LTable) (*ecs.Definition, error) {
	def := &ecs.Definition{
		Name:   name,
		Filter: ecs.None(),
		Events: make(map[string]ecs.Hook),
	}
	if v, ok := tbl.RawGetString("name").(lua.LString); ok && v != "" {
		def.Name = string(v)
	}

	filter, err := e.filter(def.Name, tbl.RawGetString("filter"))
	if err != nil {
		return nil, err
	}
	def.Filter = filter

	switch v := tbl.RawGetString("sort").(type) {
	case *lua.LFunction:
		def.Less = func(a, b *ecs.Entity) bool {
			return lua.LVAsBool(e.call(def.Name+".sort", v, 1, e.entityValue(a), e.entityValue(b)))
		}
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("sort must be a function, got %s", v.Type())
	}

	def.ContinuousSort = lua.LVAsBool(tbl.RawGetString("continuous_sort")) ||
		lua.LVAsBool(tbl.RawGetString("continuousSort"))

	tbl.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok || reservedKeys[string(key)] {
			return
		}
		fn, ok := v.(*lua.LFunction)
		if !ok {
			return // plain field, reachable as self.<key>
		}
		event := string(key)
		switch event {
		case "init":
			def.Init = e.hook(def.Name+".init", fn)
		case "added":
			def.Added = e.entityHook(def.Name+".added", fn)
		case "removed":
			def.Removed = e.entityHook(def.Name+".removed", fn)
		default:
			def.Events[event] = e.hook(def.Name+"."+event, fn)
		}
	})
	e.tables[def] = tbl
	return def, nil
}

func (e *Engine) filter(name string, v lua.LValue) (ecs.Filter, error) {
	switch f := v.(type) {
	case *lua.LNilType:
		return ecs.None(), nil
	case *lua.LFunction:
		return ecs.Where(func(ent *ecs.Entity) bool {
			return lua.LVAsBool(e.call(name+".filter", f, 1, e.entityValue(ent)))
		}), nil
	case *lua.LTable:
		keys := make([]string, 0, f.Len())
		for i := 1; i <= f.Len(); i++ {
			k, ok := f.RawGetInt(i).(lua.LString)
			if !ok {
				return ecs.Filter{}, fmt.Errorf("filter[%d] must be a string", i)
			}
			keys = append(keys, string(k))
		}
		return ecs.RequireKeys(keys...), nil
	}
	return ecs.Filter{}, fmt.Errorf("filter must be a list of keys or a function, got %s", v.Type())
}

func (e *Engine) hook(what string, fn *lua.LFunction) ecs.Hook {
	return func(s *ecs.System, args ...any) {
		largs := make([]lua.LValue, 0, len(args)+1)
		largs = append(largs, e.systemValue(s))
		for _, a := range args {
			largs = append(largs, e.toLua(a))
		}
		e.call(what, fn, 0, largs...)
	}
}

func (e *Engine) entityHook(what string, fn *lua.LFunction) ecs.EntityHook {
	return func(s *ecs.System, ent *ecs.Entity) {
		e.call(what, fn, 0, e.systemValue(s), e.entityValue(ent))
	}
}
