package playback

// Observer receives playback snapshots. Observers are invoked
// synchronously on the engine's serialization point, in subscription
// order, immediately after each state mutation. They must not call
// back into the engine; use State() from another goroutine instead.
type Observer func(State)

type subscriber struct {
	id int
	fn Observer
}

// Subscribe registers an observer and immediately delivers the current
// snapshot, so a late subscriber never misses the present state. The
// returned function removes the observer and is safe to call more than
// once.
func (e *engine) Subscribe(fn Observer) func() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return func() {}
	}
	e.subID++
	id := e.subID
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	snap := e.st.clone()
	fn(snap)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// notifyLocked delivers the current snapshot to every subscriber.
// Called with e.mu held so that apply-then-broadcast is one critical
// section and no interleaved state is ever observable.
func (e *engine) notifyLocked() {
	if len(e.subs) == 0 {
		return
	}
	snap := e.st.clone()
	for _, s := range e.subs {
		s.fn(snap)
	}
}
