package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Subscribers is an ordered list of callbacks that can be removed individually.
// The zero value is ready to use. It is not safe for concurrent use; callers serialize access
// the same way they serialize the state the callbacks observe.
type Subscribers[T any] struct {
	nextID int
	ids    []int
	fns    map[int]T
}

// Add registers a callback and returns a function that removes it.
// Calling the returned function more than once is a no-op.
//
// Parameters:
//   - fn: the callback to register
//
// Returns:
//   - func(): removes the callback
func (s *Subscribers[T]) Add(fn T) func() {
	if s.fns == nil {
		s.fns = make(map[int]T)
	}
	id := s.nextID
	s.nextID++
	s.ids = append(s.ids, id)
	s.fns[id] = fn
	return func() {
		if _, ok := s.fns[id]; !ok {
			return
		}
		delete(s.fns, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
	}
}

// Each invokes visit for every registered callback in registration order.
// Callbacks added or removed during iteration take effect on the next call.
func (s *Subscribers[T]) Each(visit func(fn T)) {
	if len(s.ids) == 0 {
		return
	}
	ids := append([]int(nil), s.ids...)
	for _, id := range ids {
		if fn, ok := s.fns[id]; ok {
			visit(fn)
		}
	}
}

// Len returns the number of registered callbacks.
func (s *Subscribers[T]) Len() int {
	return len(s.ids)
}
