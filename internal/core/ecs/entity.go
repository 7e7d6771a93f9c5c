package ecs

import (
	"math"
	"reflect"
	"sort"
)

// Entity is an open attribute record. The core never interprets attributes
// except through filters and method lookup; identity is the pointer.
type Entity struct {
	attrs map[string]any
}

// NewEntity copies attrs into a fresh entity. attrs may be nil.
func NewEntity(attrs map[string]any) *Entity {
	e := &Entity{attrs: make(map[string]any, len(attrs))}
	for k, v := range attrs {
		e.attrs[k] = v
	}
	return e
}

func (e *Entity) Get(key string) (any, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// Value returns the attribute or nil when absent.
func (e *Entity) Value(key string) any {
	return e.attrs[key]
}

// Set stores an attribute and returns e for chaining.
func (e *Entity) Set(key string, value any) *Entity {
	e.attrs[key] = value
	return e
}

func (e *Entity) Delete(key string) {
	delete(e.attrs, key)
}

// Has reports whether key is present and truthy.
func (e *Entity) Has(key string) bool {
	v, ok := e.attrs[key]
	return ok && Truthy(v)
}

// Keys returns the attribute names in lexical order.
func (e *Entity) Keys() []string {
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Entity) Len() int { return len(e.attrs) }

// Number returns a numeric attribute widened to float64.
func (e *Entity) Number(key string) (float64, bool) {
	return AsNumber(e.attrs[key])
}

// Callable is an attribute that behaves as a method of its entity.
type Callable interface {
	Call(self *Entity, args ...any)
}

// Method adapts a Go function to Callable.
type Method func(self *Entity, args ...any)

func (m Method) Call(self *Entity, args ...any) { m(self, args...) }

// Method returns the attribute named name when it is callable.
func (e *Entity) Method(name string) (Callable, bool) {
	c, ok := e.attrs[name].(Callable)
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}

// Truthy reports whether v counts as a meaningful attribute value: nil, false,
// numeric zero, NaN, the empty string and nil references are falsy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int8:
		return x != 0
	case int16:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case uint:
		return x != 0
	case uint8:
		return x != 0
	case uint16:
		return x != 0
	case uint32:
		return x != 0
	case uint64:
		return x != 0
	case uintptr:
		return x != 0
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case float64:
		return x != 0 && !math.IsNaN(x)
	case *Entity:
		return x != nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// AsNumber widens any builtin numeric value to float64.
func AsNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
