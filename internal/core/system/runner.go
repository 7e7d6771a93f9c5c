package system

import (
	"context"
	"sort"
	"time"
)

// Runner flushes the pool and emits every registered phase in order, once
// per tick.
type Runner struct {
	pool   Pool
	phases []Phase
	sorted bool
}

func NewRunner(pool Pool) *Runner {
	return &Runner{
		pool:   pool,
		phases: make([]Phase, 0, 4),
	}
}

// SetPool retargets the runner, used when the host rebuilds its pool.
func (r *Runner) SetPool(pool Pool) {
	r.pool = pool
}

func (r *Runner) Register(p Phase) {
	r.phases = append(r.phases, p)
	r.sorted = false
}

// Phases returns the registered phases in execution order.
func (r *Runner) Phases() []Phase {
	r.ensureSorted()
	return append([]Phase(nil), r.phases...)
}

// Tick admits queued entities, then emits each phase with dt in seconds.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	r.pool.Flush()
	for _, p := range r.phases {
		r.pool.Emit(p.Event, dt.Seconds())
	}
}

// TickPhase flushes and emits a single phase. Used to step one pass (for
// example a redraw) without advancing the simulation.
func (r *Runner) TickPhase(name string, dt time.Duration) {
	r.ensureSorted()
	r.pool.Flush()
	for _, p := range r.phases {
		if p.Event == name {
			r.pool.Emit(p.Event, dt.Seconds())
		}
	}
}

// Run ticks at the given rate until ctx is done. before, when non-nil, runs
// on the ticking goroutine ahead of every tick; it may call SetPool.
func (r *Runner) Run(ctx context.Context, rate time.Duration, before func()) error {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if before != nil {
				before()
			}
			r.Tick(now.Sub(last))
			last = now
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.phases, func(i, j int) bool {
			return r.phases[i].Order < r.phases[j].Order
		})
		r.sorted = true
	}
}
