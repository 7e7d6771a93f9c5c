package ecs

// Group is a named, filtered and optionally sorted view over the entities
// that have passed through Flush.
type Group struct {
	name   string
	filter Filter
	members
}

func newGroup(name string, cfg GroupConfig) *Group {
	return &Group{
		name:    name,
		filter:  cfg.Filter,
		members: newMembers(cfg.Less),
	}
}

func (g *Group) Name() string       { return g.name }
func (g *Group) Filter() Filter     { return g.filter }
func (g *Group) Len() int           { return len(g.list) }
func (g *Group) Has(e *Entity) bool { return g.has(e) }

// Entities returns the live member sequence. Callers must not modify it and
// should copy it before iterating if the iteration can change membership.
func (g *Group) Entities() []*Entity { return g.list }
