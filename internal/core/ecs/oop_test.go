package ecs

import (
	"testing"

	"github.com/l1jgo/entitypool/internal/core/event"
)

func TestForwardToEntityMethods(t *testing.T) {
	var got []string
	method := Method(func(self *Entity, args ...any) {
		got = append(got, nameOf(self)+":"+args[0].(string))
	})
	def := Forward("")
	p := NewPool(Config{Systems: []*Definition{def}})
	p.Queue(named("a").Set("update", method))
	p.Queue(named("b").Set("update", "not callable"))
	p.Queue(named("c").Set("update", method))
	p.Flush()

	p.Emit(event.Update, "t1")
	if len(got) != 2 || got[0] != "a:t1" || got[1] != "c:t1" {
		t.Fatalf("forwarded calls = %v", got)
	}
	got = nil
	p.Emit(event.Draw, "t2")
	if len(got) != 0 {
		t.Fatalf("event without entity methods forwarded: %v", got)
	}
}

func TestForwardToGroup(t *testing.T) {
	calls := 0
	method := Method(func(self *Entity, args ...any) { calls++ })
	p := NewPool(Config{
		Groups:  map[string]GroupConfig{"actors": {Filter: RequireKeys("actor")}},
		Systems: []*Definition{Forward("actors")},
	})
	p.Queue(named("a").Set("actor", true).Set("update", method))
	p.Queue(named("b").Set("update", method))
	p.Flush()
	p.Emit(event.Update)
	if calls != 1 {
		t.Fatalf("forwarded to %d entities, want 1", calls)
	}
}

func TestForwardSkipsMembershipHooks(t *testing.T) {
	def := Forward("")
	if _, ok := def.Handler(event.Update); !ok {
		t.Fatalf("forward did not resolve update")
	}
	for _, name := range []string{event.Added, event.Removed} {
		if _, ok := def.Handler(name); ok {
			t.Fatalf("forward resolved membership hook %s", name)
		}
	}
}

func TestForwardSelfRemovalDuringUpdate(t *testing.T) {
	var p *Pool
	die := Method(func(self *Entity, args ...any) {
		p.Remove(func(e *Entity) bool { return e == self })
	})
	p = NewPool(Config{Systems: []*Definition{Forward("")}})
	for _, n := range []string{"a", "b", "c"} {
		p.Queue(named(n).Set("update", die))
	}
	p.Flush()
	p.Emit(event.Update)
	if p.Len() != 0 {
		t.Fatalf("entities left after self-removal: %s", names(p.Entities()))
	}
}

func TestForwardUnknownGroupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("forwarding to an unknown group did not panic")
		}
	}()
	// init is the first event the system forwards.
	NewPool(Config{Systems: []*Definition{Forward("ghosts")}})
}

func TestForwardBuildsOneHookPerEvent(t *testing.T) {
	f := newForwarder("")
	def := f.definition()
	for i := 0; i < 3; i++ {
		if _, ok := def.Handler(event.Update); !ok {
			t.Fatalf("update not forwarded")
		}
	}
	def.Handler(event.Draw)
	def.Handler(event.Added)
	if len(f.hooks) != 2 {
		t.Fatalf("built %d hooks, want 2", len(f.hooks))
	}
	if _, ok := f.hooks[event.Added]; ok {
		t.Fatalf("membership hook was forwarded")
	}
}
