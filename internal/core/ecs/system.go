package ecs

import "github.com/l1jgo/entitypool/internal/core/event"

// Hook is an event callback of a behavior definition. The receiver is the
// system built from the definition.
type Hook func(s *System, args ...any)

// EntityHook is a membership callback.
type EntityHook func(s *System, e *Entity)

// Definition is the behavior of a system: its membership filter, optional
// ordering and the callbacks it answers to. A *Definition is also the key
// GetSystem looks systems up by.
type Definition struct {
	Name   string
	Filter Filter
	Less   func(a, b *Entity) bool
	// ContinuousSort re-sorts members before every event the system handles.
	ContinuousSort bool

	Init    Hook
	Added   EntityHook
	Removed EntityHook
	Events  map[string]Hook

	// Resolve answers event names that have no static callback.
	Resolve func(event string) (Hook, bool)
}

// Handler returns the callback the definition registers for an event name.
func (d *Definition) Handler(name string) (Hook, bool) {
	switch name {
	case event.Init:
		if d.Init != nil {
			return d.Init, true
		}
	case event.Added:
		if d.Added != nil {
			return entityHook(d.Added), true
		}
	case event.Removed:
		if d.Removed != nil {
			return entityHook(d.Removed), true
		}
	}
	if h, ok := d.Events[name]; ok && h != nil {
		return h, true
	}
	if d.Resolve != nil {
		return d.Resolve(name)
	}
	return nil, false
}

func entityHook(fn EntityHook) Hook {
	return func(s *System, args ...any) {
		var e *Entity
		if len(args) > 0 {
			e, _ = args[0].(*Entity)
		}
		fn(s, e)
	}
}

// System is a filtered, optionally sorted view over the pool's entities that
// carries a behavior definition.
type System struct {
	def  *Definition
	pool *Pool
	members
}

func newSystem(def *Definition, pool *Pool) *System {
	return &System{
		def:     def,
		pool:    pool,
		members: newMembers(def.Less),
	}
}

func (s *System) Pool() *Pool             { return s.pool }
func (s *System) Definition() *Definition { return s.def }
func (s *System) Name() string            { return s.def.Name }
func (s *System) Len() int                { return len(s.list) }
func (s *System) Has(e *Entity) bool      { return s.has(e) }

// Entities returns the live member sequence; see Group.Entities.
func (s *System) Entities() []*Entity { return s.list }

// Queue forwards to the owning pool.
func (s *System) Queue(e *Entity) *Entity {
	return s.pool.Queue(e)
}

func (s *System) join(e *Entity) {
	s.insert(e)
	if s.def.Added != nil {
		s.def.Added(s, e)
	}
	s.resort()
}

func (s *System) leave(e *Entity) {
	if s.def.Removed != nil {
		s.def.Removed(s, e)
	}
	s.drop(e)
}

func (s *System) dispatch(name string, args []any) {
	h, ok := s.def.Handler(name)
	if !ok {
		return
	}
	if s.def.ContinuousSort {
		s.resort()
	}
	h(s, args...)
}
