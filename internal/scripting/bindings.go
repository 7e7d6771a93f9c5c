package scripting

import (
	"fmt"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
)

const (
	entityTypeName = "entitypool.entity"
	systemTypeName = "entitypool.system"
)

// method is a Lua function stored as an entity attribute.
type method struct {
	eng *Engine
	fn  *lua.LFunction
}

func (m method) Call(self *ecs.Entity, args ...any) {
	largs := make([]lua.LValue, 0, len(args)+1)
	largs = append(largs, m.eng.entityValue(self))
	for _, a := range args {
		largs = append(largs, m.eng.toLua(a))
	}
	m.eng.call("entity method", m.fn, 0, largs...)
}

func (e *Engine) registerEntityType() {
	L := e.vm
	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		ent := checkEntity(L, 1)
		v, _ := ent.Get(L.CheckString(2))
		L.Push(e.toLua(v))
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		ent := checkEntity(L, 1)
		key := L.CheckString(2)
		if v := L.Get(3); v == lua.LNil {
			ent.Delete(key)
		} else {
			ent.Set(key, e.fromLua(v))
		}
		return 0
	}))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fmt.Sprintf("entity(%p)", checkEntity(L, 1))))
		return 1
	}))

	L.SetGlobal("entity", L.NewFunction(func(L *lua.LState) int {
		ent := ecs.NewEntity(nil)
		if tbl, ok := L.Get(1).(*lua.LTable); ok {
			e.fill(ent, tbl)
		}
		L.Push(e.entityValue(ent))
		return 1
	}))
	L.SetGlobal("has", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkEntity(L, 1).Has(L.CheckString(2))))
		return 1
	}))
	L.SetGlobal("keys", L.NewFunction(func(L *lua.LState) int {
		out := L.NewTable()
		for _, k := range checkEntity(L, 1).Keys() {
			out.Append(lua.LString(k))
		}
		L.Push(out)
		return 1
	}))
}

var systemMethods = map[string]func(e *Engine, L *lua.LState, s *ecs.System) int{
	"name": func(e *Engine, L *lua.LState, s *ecs.System) int {
		L.Push(lua.LString(s.Name()))
		return 1
	},
	"len": func(e *Engine, L *lua.LState, s *ecs.System) int {
		L.Push(lua.LNumber(s.Len()))
		return 1
	},
	"entities": func(e *Engine, L *lua.LState, s *ecs.System) int {
		L.Push(e.entityList(s.Entities()))
		return 1
	},
	"has": func(e *Engine, L *lua.LState, s *ecs.System) int {
		L.Push(lua.LBool(s.Has(checkEntity(L, 2))))
		return 1
	},
	"queue": func(e *Engine, L *lua.LState, s *ecs.System) int {
		var ent *ecs.Entity
		switch v := L.Get(2).(type) {
		case *lua.LTable:
			ent = ecs.NewEntity(nil)
			e.fill(ent, v)
		default:
			ent = checkEntity(L, 2)
		}
		L.Push(e.entityValue(s.Queue(ent)))
		return 1
	},
	"flush": func(e *Engine, L *lua.LState, s *ecs.System) int {
		s.Pool().Flush()
		return 0
	},
	"emit": func(e *Engine, L *lua.LState, s *ecs.System) int {
		name := L.CheckString(2)
		args := make([]any, 0, L.GetTop()-2)
		for i := 3; i <= L.GetTop(); i++ {
			args = append(args, e.fromLua(L.Get(i)))
		}
		s.Pool().Emit(name, args...)
		return 0
	},
	"remove": func(e *Engine, L *lua.LState, s *ecs.System) int {
		switch v := L.Get(2).(type) {
		case *lua.LFunction:
			s.Pool().Remove(func(ent *ecs.Entity) bool {
				return lua.LVAsBool(e.call(s.Name()+".remove", v, 1, e.entityValue(ent)))
			})
		default:
			target := checkEntity(L, 2)
			s.Pool().Remove(func(ent *ecs.Entity) bool { return ent == target })
		}
		return 0
	},
	"group": func(e *Engine, L *lua.LState, s *ecs.System) int {
		name := L.CheckString(2)
		g, ok := s.Pool().LookupGroup(name)
		if !ok {
			L.RaiseError("unknown group %q", name)
			return 0
		}
		L.Push(e.entityList(g.Entities()))
		return 1
	},
}

func (e *Engine) registerSystemType() {
	L := e.vm
	mt := L.NewTypeMetatable(systemTypeName)
	methods := L.NewTable()
	for name, fn := range systemMethods {
		fn := fn
		methods.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			return fn(e, L, checkSystem(L, 1))
		}))
	}
	// Methods first, then fields of the script table.
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		s := checkSystem(L, 1)
		key := L.CheckString(2)
		if m := methods.RawGetString(key); m != lua.LNil {
			L.Push(m)
			return 1
		}
		if tbl, ok := e.tables[s.Definition()]; ok {
			L.Push(tbl.RawGetString(key))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		s := checkSystem(L, 1)
		tbl, ok := e.tables[s.Definition()]
		if !ok {
			L.RaiseError("system %q has no script table", s.Name())
			return 0
		}
		tbl.RawSetString(L.CheckString(2), L.Get(3))
		return 0
	}))
}

func checkEntity(L *lua.LState, n int) *ecs.Entity {
	ud := L.CheckUserData(n)
	ent, ok := ud.Value.(*ecs.Entity)
	if !ok {
		L.ArgError(n, "entity expected")
		return nil
	}
	return ent
}

func checkSystem(L *lua.LState, n int) *ecs.System {
	ud := L.CheckUserData(n)
	s, ok := ud.Value.(*ecs.System)
	if !ok {
		L.ArgError(n, "system expected")
		return nil
	}
	return s
}

// entityValue returns the cached userdata of ent so Lua equality follows
// entity identity.
func (e *Engine) entityValue(ent *ecs.Entity) lua.LValue {
	if ent == nil {
		return lua.LNil
	}
	if ud, ok := e.entities[ent]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = ent
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(entityTypeName))
	e.entities[ent] = ud
	return ud
}

func (e *Engine) systemValue(s *ecs.System) lua.LValue {
	if ud, ok := e.systems[s]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = s
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(systemTypeName))
	e.systems[s] = ud
	return ud
}

func (e *Engine) entityList(ents []*ecs.Entity) *lua.LTable {
	out := e.vm.CreateTable(len(ents), 0)
	for _, ent := range ents {
		out.Append(e.entityValue(ent))
	}
	return out
}

// fill copies the string-keyed fields of tbl onto ent.
func (e *Engine) fill(ent *ecs.Entity, tbl *lua.LTable) {
	tbl.ForEach(func(k, v lua.LValue) {
		if key, ok := k.(lua.LString); ok {
			ent.Set(string(key), e.fromLua(v))
		}
	})
}

func (e *Engine) toLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case *ecs.Entity:
		return e.entityValue(x)
	case *ecs.System:
		return e.systemValue(x)
	case method:
		return x.fn
	case map[string]any:
		tbl := e.vm.CreateTable(0, len(x))
		for k, val := range x {
			tbl.RawSetString(k, e.toLua(val))
		}
		return tbl
	case []any:
		tbl := e.vm.CreateTable(len(x), 0)
		for _, val := range x {
			tbl.Append(e.toLua(val))
		}
		return tbl
	}
	if n, ok := ecs.AsNumber(v); ok {
		return lua.LNumber(n)
	}
	ud := e.vm.NewUserData()
	ud.Value = v
	return ud
}

func (e *Engine) fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LFunction:
		return method{eng: e, fn: x}
	case *lua.LUserData:
		return x.Value
	}
	return v
}
