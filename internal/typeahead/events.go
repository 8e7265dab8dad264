package typeahead

// emitter fans a value out to subscribers in subscription order.
type emitter[T any] struct {
	next      int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// subscribe registers fn and returns a function that removes it.
func (e *emitter[T]) subscribe(fn func(T)) func() {
	e.next++
	id := e.next
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *emitter[T]) fire(v T) {
	// a listener may unsubscribe while being called
	for _, l := range append([]listener[T](nil), e.listeners...) {
		l.fn(v)
	}
}

func (e *emitter[T]) len() int { return len(e.listeners) }
