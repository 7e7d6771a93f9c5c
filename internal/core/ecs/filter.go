package ecs

// FilterKind identifies the variant held by a Filter.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterKeys
	FilterPredicate
)

func (k FilterKind) String() string {
	switch k {
	case FilterKeys:
		return "keys"
	case FilterPredicate:
		return "predicate"
	}
	return "none"
}

// Filter decides membership of an entity in a group or system. The zero
// value matches every entity.
type Filter struct {
	kind FilterKind
	keys []string
	pred func(*Entity) bool
}

// None matches every entity.
func None() Filter { return Filter{} }

// RequireKeys matches entities on which every key is present and truthy.
func RequireKeys(keys ...string) Filter {
	return Filter{kind: FilterKeys, keys: append([]string(nil), keys...)}
}

// Where matches entities for which fn returns true. A nil fn is None.
func Where(fn func(*Entity) bool) Filter {
	if fn == nil {
		return Filter{}
	}
	return Filter{kind: FilterPredicate, pred: fn}
}

func (f Filter) Kind() FilterKind { return f.kind }

// Keys returns the required keys of a FilterKeys filter.
func (f Filter) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Match evaluates the filter against the current state of e.
func (f Filter) Match(e *Entity) bool {
	switch f.kind {
	case FilterKeys:
		for _, k := range f.keys {
			if !e.Has(k) {
				return false
			}
		}
		return true
	case FilterPredicate:
		return f.pred(e)
	}
	return true
}
