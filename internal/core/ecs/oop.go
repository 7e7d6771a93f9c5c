package ecs

import "github.com/l1jgo/entitypool/internal/core/event"

// Forward returns a definition without static callbacks. Every event it is
// asked to handle is forwarded to the members of the named group (or to all
// committed entities when group is empty) whose attribute of the same name
// is Callable, with the entity as receiver.
func Forward(group string) *Definition {
	return newForwarder(group).definition()
}

// forwarder builds one forwarding hook per event name and reuses it.
type forwarder struct {
	group string
	hooks map[string]Hook
}

func newForwarder(group string) *forwarder {
	return &forwarder{group: group, hooks: make(map[string]Hook)}
}

func (f *forwarder) definition() *Definition {
	def := &Definition{Name: "forward", Resolve: f.resolve}
	if f.group != "" {
		def.Name = "forward:" + f.group
	}
	return def
}

func (f *forwarder) resolve(name string) (Hook, bool) {
	switch name {
	case event.Added, event.Removed:
		return nil, false
	}
	if h, ok := f.hooks[name]; ok {
		return h, true
	}
	h := f.forward(name)
	f.hooks[name] = h
	return h, true
}

func (f *forwarder) forward(name string) Hook {
	return func(s *System, args ...any) {
		var targets []*Entity
		if f.group == "" {
			targets = s.pool.entities.snapshot()
		} else {
			targets = s.pool.Group(f.group).snapshot()
		}
		for _, e := range targets {
			if m, ok := e.Method(name); ok {
				m.Call(e, args...)
			}
		}
	}
}
