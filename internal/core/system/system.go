package system

import "github.com/l1jgo/entitypool/internal/core/event"

// Phase is a tick event emitted once per Tick. Lower Order runs first.
type Phase struct {
	Event string
	Order int
}

// DefaultPhases are the update and draw passes of an interactive loop.
var DefaultPhases = []Phase{
	{Event: event.Update, Order: 0},
	{Event: event.Draw, Order: 1},
}

// Pool is the part of the entity pool the runner drives.
type Pool interface {
	Flush()
	Emit(name string, args ...any)
}
