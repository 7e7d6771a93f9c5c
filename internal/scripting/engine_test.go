package scripting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	"github.com/l1jgo/entitypool/internal/core/event"
	lua "github.com/yuin/gopher-lua"
)

const moverSrc = `
return {
  name = "mover",
  speed = 2,
  filter = {"x", "dx"},
  sort = function(a, b) return a.x < b.x end,
  init = function(self, label)
    self.label = label
  end,
  added = function(self, e)
    e.seen = true
  end,
  removed = function(self, e)
    e.gone = self:len()
  end,
  update = function(self, dt)
    for _, e in ipairs(self:entities()) do
      e.x = e.x + e.dx * dt * self.speed
    end
  end,
}
`

func newPool(t *testing.T, eng *Engine, src string, args ...any) (*ecs.Pool, *ecs.Definition) {
	t.Helper()
	def, err := eng.LoadString("test", src)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	return ecs.NewPool(ecs.Config{Systems: []*ecs.Definition{def}}, args...), def
}

func TestScriptedSystem(t *testing.T) {
	eng := NewEngine(nil)
	defer eng.Close()
	p, def := newPool(t, eng, moverSrc, "hello")

	if def.Name != "mover" || def.Less == nil {
		t.Fatalf("definition = %+v", def)
	}
	if kind := def.Filter.Kind(); kind != ecs.FilterKeys {
		t.Fatalf("filter kind = %s", kind)
	}

	a := p.Queue(ecs.NewEntity(map[string]any{"x": 5, "dx": 1}))
	b := p.Queue(ecs.NewEntity(map[string]any{"x": 1, "dx": 1}))
	p.Queue(ecs.NewEntity(map[string]any{"x": 1}))
	p.Flush()

	s, _ := p.GetSystem(def)
	if s.Len() != 2 || s.Entities()[0] != b || s.Entities()[1] != a {
		t.Fatalf("members not sorted by x: %v", s.Entities())
	}
	if !a.Has("seen") {
		t.Fatalf("added hook did not run")
	}

	p.Emit(event.Update, 0.5)
	if x, _ := a.Number("x"); x != 6 {
		t.Fatalf("a.x = %v, want 6", x)
	}

	if err := eng.DoString(`assert(true)`); err != nil {
		t.Fatal(err)
	}
	tbl := eng.tables[def]
	if got := tbl.RawGetString("label"); got != lua.LString("hello") {
		t.Fatalf("init did not store label via self, got %v", got)
	}

	p.Remove(func(e *ecs.Entity) bool { return e == a })
	if n, _ := a.Number("gone"); n != 2 {
		t.Fatalf("removed ran after splice, len = %v", n)
	}
}

func TestScriptedPredicateFilterAndEmit(t *testing.T) {
	eng := NewEngine(nil)
	defer eng.Close()
	src := `
return {
  filter = function(e) return e.hp ~= nil and e.hp > 0 end,
  hit = function(self, target, dmg)
    target.hp = target.hp - dmg
    if target.hp <= 0 then
      self:emit("died", target)
      self:remove(target)
    end
  end,
}
`
	p, def := newPool(t, eng, src)
	if def.Name != "test" || def.Filter.Kind() != ecs.FilterPredicate {
		t.Fatalf("definition = %+v", def)
	}
	orc := p.Queue(ecs.NewEntity(map[string]any{"hp": 3}))
	p.Queue(ecs.NewEntity(map[string]any{"hp": 0}))
	p.Flush()
	s, _ := p.GetSystem(def)
	if s.Len() != 1 {
		t.Fatalf("predicate filter admitted %d", s.Len())
	}

	var died []*ecs.Entity
	p.On("died", func(args ...any) { died = append(died, args[0].(*ecs.Entity)) })
	p.Emit("hit", orc, 1)
	if len(died) != 0 || p.Len() != 2 {
		t.Fatalf("orc died early")
	}
	p.Emit("hit", orc, 5)
	if len(died) != 1 || died[0] != orc {
		t.Fatalf("died event = %v", died)
	}
	if p.Has(orc) {
		t.Fatalf("orc still in pool")
	}
}

func TestScriptedQueueAndEntityMethods(t *testing.T) {
	eng := NewEngine(nil)
	defer eng.Close()
	src := `
return {
  init = function(self)
    local e = self:queue{ name = "blinker", count = 0 }
    e.update = function(me, dt) me.count = me.count + 1 end
    self:queue(entity{ name = "rock" })
  end,
}
`
	def, err := eng.LoadString("spawner", src)
	if err != nil {
		t.Fatal(err)
	}
	p := ecs.NewPool(ecs.Config{Systems: []*ecs.Definition{def, ecs.Forward("")}})
	if p.Pending() != 2 {
		t.Fatalf("init queued %d entities", p.Pending())
	}
	p.Flush()
	p.Emit(event.Update, 0.1)
	p.Emit(event.Update, 0.1)

	var blinker *ecs.Entity
	for _, e := range p.Entities() {
		if e.Value("name") == "blinker" {
			blinker = e
		}
	}
	if blinker == nil {
		t.Fatalf("blinker not admitted")
	}
	if n, _ := blinker.Number("count"); n != 2 {
		t.Fatalf("forwarded lua method ran %v times", n)
	}
	if _, ok := blinker.Method("update"); !ok {
		t.Fatalf("lua function not stored as a method")
	}
}

func TestEntityIdentityInLua(t *testing.T) {
	eng := NewEngine(nil)
	defer eng.Close()
	src := `
return {
  check = function(self, a, b, out)
    out.same = rawequal(a, b)
    out.listed = self:entities()[1] == a
  end,
}
`
	p, _ := newPool(t, eng, src)
	e := p.Queue(ecs.NewEntity(nil))
	p.Flush()
	out := ecs.NewEntity(nil)
	p.Emit("check", e, e, out)
	if !out.Has("same") || !out.Has("listed") {
		t.Fatalf("entity identity lost in lua: %v", out.Keys())
	}
}

func TestScriptErrorsPropagate(t *testing.T) {
	eng := NewEngine(nil)
	defer eng.Close()
	p, _ := newPool(t, eng, `return { boom = function(self) error("kaboom") end }`)
	defer func() {
		r := recover()
		err, ok := r.(*lua.ApiError)
		if !ok || !strings.Contains(err.Error(), "kaboom") {
			t.Fatalf("recovered %v, want lua api error", r)
		}
	}()
	p.Emit("boom")
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "return {", "load bad"},
		{"not_table", "return 5", "must return a table"},
		{"nothing", "local x = 1", "must return a table"},
		{"bad_filter", "return { filter = 3 }", "filter must be"},
		{"bad_filter_key", "return { filter = {1} }", "filter[1]"},
		{"bad_sort", "return { sort = true }", "sort must be"},
		{"runtime", "error('nope')", "nope"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := NewEngine(nil)
			defer eng.Close()
			_, err := eng.LoadString("bad", c.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestLoadFileAndLibs(t *testing.T) {
	dir := t.TempDir()
	libs := filepath.Join(dir, "lib")
	if err := os.Mkdir(libs, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(path, src string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(libs, "util.lua"), `function double(x) return x * 2 end`)
	write(filepath.Join(libs, "notes.txt"), `not lua`)
	write(filepath.Join(dir, "doubler.lua"), `
return {
  filter = {"v"},
  update = function(self) for _, e in ipairs(self:entities()) do e.v = double(e.v) end end,
}`)

	eng := NewEngine(nil)
	defer eng.Close()
	if err := eng.LoadLibs(libs); err != nil {
		t.Fatalf("LoadLibs: %v", err)
	}
	if err := eng.LoadLibs(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("missing lib dir should be skipped: %v", err)
	}
	def, err := eng.LoadFile(filepath.Join(dir, "doubler.lua"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if def.Name != "doubler" {
		t.Fatalf("name = %s", def.Name)
	}
	p := ecs.NewPool(ecs.Config{Systems: []*ecs.Definition{def}})
	e := p.Queue(ecs.NewEntity(map[string]any{"v": 3}))
	p.Flush()
	p.Emit(event.Update)
	if v, _ := e.Number("v"); v != 6 {
		t.Fatalf("v = %v", v)
	}
}

func TestForget(t *testing.T) {
	eng := NewEngine(nil)
	defer eng.Close()
	e := ecs.NewEntity(nil)
	first := eng.entityValue(e)
	if eng.entityValue(e) != first {
		t.Fatalf("userdata not cached")
	}
	eng.Forget(e)
	if _, ok := eng.entities[e]; ok {
		t.Fatalf("Forget left the cache entry")
	}
}
