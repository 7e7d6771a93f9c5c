package ecs

import "sort"

// members is the ordered membership store shared by groups and systems: a
// sequence for iteration plus a set for O(1) membership tests.
type members struct {
	less func(a, b *Entity) bool
	list []*Entity
	set  map[*Entity]struct{}
}

func newMembers(less func(a, b *Entity) bool) members {
	return members{
		less: less,
		list: make([]*Entity, 0, 64),
		set:  make(map[*Entity]struct{}, 64),
	}
}

func (m *members) has(e *Entity) bool {
	_, ok := m.set[e]
	return ok
}

func (m *members) insert(e *Entity) {
	m.list = append(m.list, e)
	m.set[e] = struct{}{}
}

// drop unmarks e and splices it out, keeping the order of the rest.
func (m *members) drop(e *Entity) {
	delete(m.set, e)
	for i, x := range m.list {
		if x == e {
			copy(m.list[i:], m.list[i+1:])
			m.list[len(m.list)-1] = nil
			m.list = m.list[:len(m.list)-1]
			return
		}
	}
}

// resort runs a full stable sort when a comparator is configured.
func (m *members) resort() {
	if m.less == nil || len(m.list) < 2 {
		return
	}
	sort.SliceStable(m.list, func(i, j int) bool {
		return m.less(m.list[i], m.list[j])
	})
}

func (m *members) snapshot() []*Entity {
	return append([]*Entity(nil), m.list...)
}

func (m *members) len() int { return len(m.list) }
