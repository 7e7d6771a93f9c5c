package system

import (
	"fmt"
	"sort"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	"go.uber.org/zap"
)

// Factory builds a fresh definition. Every call returns a new *Definition so
// each pool gets its own system state.
type Factory func(opts map[string]any, log *zap.Logger) (*ecs.Definition, error)

var builtins = map[string]Factory{
	"expiry": NewExpiry,
	"census": NewCensus,
}

// Builtin builds the named built-in definition.
func Builtin(name string, opts map[string]any, log *zap.Logger) (*ecs.Definition, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin system %q", name)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return f(opts, log.Named(name))
}

// Builtins lists the registered built-in names.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
