package ecs

import (
	"fmt"
	"sort"

	"github.com/l1jgo/entitypool/internal/core/event"
	"go.uber.org/zap"
)

// GroupConfig describes a group at construction time.
type GroupConfig struct {
	Filter Filter
	Less   func(a, b *Entity) bool
}

// Config is the construction-time layout of a pool. It is not consulted
// after NewPool returns.
type Config struct {
	Groups  map[string]GroupConfig
	Systems []*Definition
	Log     *zap.Logger
}

// Pool owns the admission queue, the committed entity set, the groups, the
// ordered systems and the event bus. It is driven from a single goroutine;
// hooks and listeners may call back into it.
type Pool struct {
	queue    []*Entity
	entities members
	evicting map[*Entity]struct{}

	groups     map[string]*Group
	groupOrder []*Group
	systems    []*System

	bus *event.Bus
	log *zap.Logger
}

// NewPool builds groups and systems from cfg and emits init with args.
func NewPool(cfg Config, args ...any) *Pool {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{
		queue:    make([]*Entity, 0, 64),
		entities: newMembers(nil),
		evicting: make(map[*Entity]struct{}),
		groups:   make(map[string]*Group, len(cfg.Groups)),
		bus:      event.NewBus(),
		log:      log,
	}

	names := make([]string, 0, len(cfg.Groups))
	for name := range cfg.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := newGroup(name, cfg.Groups[name])
		p.groups[name] = g
		p.groupOrder = append(p.groupOrder, g)
	}

	p.systems = make([]*System, 0, len(cfg.Systems))
	for i, def := range cfg.Systems {
		if def == nil {
			panic(fmt.Sprintf("ecs: nil system definition at index %d", i))
		}
		p.systems = append(p.systems, newSystem(def, p))
	}

	log.Info("entity pool ready",
		zap.Int("groups", len(p.groupOrder)),
		zap.Int("systems", len(p.systems)))

	p.Emit(event.Init, args...)
	return p
}

// Queue schedules e for admission on the next Flush and returns it.
func (p *Pool) Queue(e *Entity) *Entity {
	p.queue = append(p.queue, e)
	return e
}

// Flush admits every entity queued before the call, in queue order. Entities
// queued while the pass runs are left for the next Flush.
func (p *Pool) Flush() {
	if len(p.queue) == 0 {
		return
	}
	batch := p.queue
	p.queue = make([]*Entity, 0, cap(batch))

	// A panicking callback leaves the entities after the failing one queued,
	// ahead of anything queued during the pass.
	done := 0
	defer func() {
		if done < len(batch) {
			rest := make([]*Entity, 0, len(batch)-done+len(p.queue))
			rest = append(rest, batch[done:]...)
			p.queue = append(rest, p.queue...)
		}
	}()

	committed := 0
	for _, e := range batch {
		done++
		for _, g := range p.groupOrder {
			in, match := g.has(e), g.filter.Match(e)
			switch {
			case match && !in:
				g.insert(e)
				g.resort()
				p.Emit(event.AddToGroup, g.name, e)
			case !match && in:
				p.leaveGroup(g, e)
			}
		}

		if !p.entities.has(e) {
			p.entities.insert(e)
			committed++
			p.Emit(event.Add, e)
		}

		for _, s := range p.systems {
			in, match := s.has(e), s.def.Filter.Match(e)
			switch {
			case match && !in:
				s.join(e)
			case !match && in:
				s.leave(e)
			}
		}
	}

	p.log.Debug("pool flushed",
		zap.Int("queued", len(batch)),
		zap.Int("committed", committed),
		zap.Int("entities", p.entities.len()))
}

// Remove evicts every committed entity matching pred. The remove event fires
// before any structural change so listeners still see full membership.
func (p *Pool) Remove(pred func(*Entity) bool) {
	snapshot := p.entities.snapshot()
	removed := 0
	for i := len(snapshot) - 1; i >= 0; i-- {
		e := snapshot[i]
		if !p.entities.has(e) || p.isEvicting(e) || !pred(e) {
			continue
		}
		p.evict(e)
		removed++
	}

	if removed > 0 {
		p.log.Debug("pool removed",
			zap.Int("removed", removed),
			zap.Int("entities", p.entities.len()))
	}
}

func (p *Pool) evict(e *Entity) {
	p.evicting[e] = struct{}{}
	defer delete(p.evicting, e)

	p.Emit(event.Remove, e)
	for _, g := range p.groupOrder {
		if g.has(e) {
			p.leaveGroup(g, e)
		}
	}
	for _, s := range p.systems {
		if s.has(e) {
			s.leave(e)
		}
	}
	p.entities.drop(e)
}

func (p *Pool) isEvicting(e *Entity) bool {
	_, ok := p.evicting[e]
	return ok
}

func (p *Pool) leaveGroup(g *Group, e *Entity) {
	p.Emit(event.RemoveFromGroup, g.name, e)
	g.drop(e)
}

// On registers fn for name and returns its handle for Off.
func (p *Pool) On(name string, fn func(args ...any)) *event.Listener {
	return p.bus.On(name, event.NewListener(fn))
}

// Listen registers an existing handle. The same handle may be registered
// more than once; Off removes every occurrence.
func (p *Pool) Listen(name string, l *event.Listener) *event.Listener {
	return p.bus.On(name, l)
}

func (p *Pool) Off(name string, l *event.Listener) {
	p.bus.Off(name, l)
}

// Emit dispatches name to every system that handles it, in registration
// order, then to every external listener in registration order.
func (p *Pool) Emit(name string, args ...any) {
	for _, s := range p.systems {
		s.dispatch(name, args)
	}
	p.bus.Dispatch(name, args...)
}

// GetSystem returns the first system built from def.
func (p *Pool) GetSystem(def *Definition) (*System, bool) {
	for _, s := range p.systems {
		if s.def == def {
			return s, true
		}
	}
	return nil, false
}

// Entities returns the live committed sequence; see Group.Entities.
func (p *Pool) Entities() []*Entity { return p.entities.list }

func (p *Pool) Len() int           { return p.entities.len() }
func (p *Pool) Has(e *Entity) bool { return p.entities.has(e) }
func (p *Pool) Pending() int       { return len(p.queue) }
func (p *Pool) Systems() []*System { return append([]*System(nil), p.systems...) }
func (p *Pool) Bus() *event.Bus    { return p.bus }

// Group returns the named group. Asking for a group the pool was not built
// with is a programming error and panics.
func (p *Pool) Group(name string) *Group {
	g, ok := p.groups[name]
	if !ok {
		panic(fmt.Sprintf("ecs: unknown group %q", name))
	}
	return g
}

func (p *Pool) LookupGroup(name string) (*Group, bool) {
	g, ok := p.groups[name]
	return g, ok
}

// GroupNames returns group names in iteration order.
func (p *Pool) GroupNames() []string {
	names := make([]string, len(p.groupOrder))
	for i, g := range p.groupOrder {
		names[i] = g.name
	}
	return names
}
