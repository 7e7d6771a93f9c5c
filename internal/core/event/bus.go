package event

// Listener is a registration handle for a named event. Go functions are not
// comparable, so the handle pointer is what Off matches against.
type Listener struct {
	fn func(args ...any)
}

func NewListener(fn func(args ...any)) *Listener {
	return &Listener{fn: fn}
}

// Call invokes the wrapped callback.
func (l *Listener) Call(args ...any) {
	l.fn(args...)
}

// Bus is a registry of named listener lists. Dispatch is synchronous and runs
// listeners in registration order.
type Bus struct {
	handlers map[string][]*Listener
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]*Listener),
	}
}

// On appends l to the listener list of name and returns it.
func (b *Bus) On(name string, l *Listener) *Listener {
	b.handlers[name] = append(b.handlers[name], l)
	return l
}

// Off removes every occurrence of l from the listener list of name.
// The list is rebuilt rather than filtered in place so a dispatch that is
// already iterating keeps the snapshot it started with.
func (b *Bus) Off(name string, l *Listener) {
	handlers, ok := b.handlers[name]
	if !ok {
		return
	}
	kept := make([]*Listener, 0, len(handlers))
	for _, h := range handlers {
		if h != l {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(b.handlers, name)
		return
	}
	b.handlers[name] = kept
}

// Dispatch calls every listener registered for name at the moment Dispatch
// starts. Listeners added during dispatch run on the next Dispatch.
func (b *Bus) Dispatch(name string, args ...any) {
	handlers := b.handlers[name]
	for _, h := range handlers {
		h.Call(args...)
	}
}

// Listeners returns a copy of the listener list of name.
func (b *Bus) Listeners(name string) []*Listener {
	return append([]*Listener(nil), b.handlers[name]...)
}

func (b *Bus) Count(name string) int {
	return len(b.handlers[name])
}
