package world

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/l1jgo/entitypool/internal/config"
	"github.com/l1jgo/entitypool/internal/core/ecs"
	"github.com/l1jgo/entitypool/internal/core/event"
	coresys "github.com/l1jgo/entitypool/internal/core/system"
	"github.com/l1jgo/entitypool/internal/data"
	"github.com/l1jgo/entitypool/internal/scripting"
	"github.com/l1jgo/entitypool/internal/system"
	"go.uber.org/zap"
)

// State is one live pool assembled from a layout: the pool, the runner that
// ticks it and the Lua engine behind its scripted systems.
// Accessed only from the tick goroutine.
type State struct {
	Pool   *ecs.Pool
	Runner *coresys.Runner
	Engine *scripting.Engine
	Layout *data.Layout
}

type Options struct {
	ScriptsDir string
	Phases     []string // tick events in emission order
	InitArgs   []any    // forwarded to every system's init hook
}

// Load reads the layout named by cfg and builds a State from it.
func Load(cfg config.PoolConfig, log *zap.Logger) (*State, error) {
	layout, err := data.LoadLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(cfg.InitArgs))
	for i, a := range cfg.InitArgs {
		args[i] = a
	}
	return Build(layout, Options{
		ScriptsDir: cfg.ScriptsDir,
		Phases:     cfg.Phases,
		InitArgs:   args,
	}, log)
}

// Build resolves every system of the layout, constructs the pool and queues
// the seed entities. Seeds are admitted by the first tick.
func Build(layout *data.Layout, opts Options, log *zap.Logger) (*State, error) {
	if log == nil {
		log = zap.NewNop()
	}
	eng := scripting.NewEngine(log.Named("lua"))
	if err := eng.LoadLibs(filepath.Join(opts.ScriptsDir, "lib")); err != nil {
		eng.Close()
		return nil, fmt.Errorf("load script libs: %w", err)
	}

	defs := make([]*ecs.Definition, 0, len(layout.Systems))
	for i, spec := range layout.Systems {
		def, err := resolve(spec, opts.ScriptsDir, eng, log)
		if err != nil {
			eng.Close()
			return nil, fmt.Errorf("systems[%d] (%s): %w", i, spec.Kind(), err)
		}
		defs = append(defs, def)
	}

	pool := ecs.NewPool(ecs.Config{
		Groups:  layout.GroupConfigs(),
		Systems: defs,
		Log:     log.Named("pool"),
	}, opts.InitArgs...)
	pool.On(event.Remove, func(args ...any) {
		if len(args) == 0 {
			return
		}
		if e, ok := args[0].(*ecs.Entity); ok {
			eng.Forget(e)
		}
	})

	for _, attrs := range layout.Entities {
		e := ecs.NewEntity(attrs)
		if _, ok := e.Get("id"); !ok {
			e.Set("id", uuid.NewString())
		}
		pool.Queue(e)
	}

	runner := coresys.NewRunner(pool)
	for i, name := range opts.Phases {
		runner.Register(coresys.Phase{Event: name, Order: i})
	}

	return &State{
		Pool:   pool,
		Runner: runner,
		Engine: eng,
		Layout: layout,
	}, nil
}

func resolve(spec data.SystemSpec, scriptsDir string, eng *scripting.Engine, log *zap.Logger) (*ecs.Definition, error) {
	switch {
	case spec.Builtin != "":
		return system.Builtin(spec.Builtin, spec.Options, log)
	case spec.Script != "":
		path := spec.Script
		if !filepath.IsAbs(path) {
			path = filepath.Join(scriptsDir, path)
		}
		return eng.LoadFile(path)
	case spec.Forward:
		return ecs.Forward(spec.Group), nil
	}
	return nil, fmt.Errorf("no definition source")
}

func (s *State) Close() {
	s.Engine.Close()
}

// Stats is a point-in-time summary of the pool.
type Stats struct {
	Entities int
	Pending  int
	Groups   []Count
	Systems  []Count
}

type Count struct {
	Name string
	Len  int
}

func (s *State) Stats() Stats {
	st := Stats{
		Entities: s.Pool.Len(),
		Pending:  s.Pool.Pending(),
	}
	for _, name := range s.Pool.GroupNames() {
		st.Groups = append(st.Groups, Count{Name: name, Len: s.Pool.Group(name).Len()})
	}
	for _, sys := range s.Pool.Systems() {
		st.Systems = append(st.Systems, Count{Name: sys.Name(), Len: sys.Len()})
	}
	return st
}
