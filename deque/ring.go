package deque

// mod returns numerator % denominator, always non-negative (-5 % 3 is 1) so it can be used to wrap indexes.
func mod(numerator, denominator int) int {
	m := numerator % denominator
	if m < 0 {
		m += denominator
	}

	return m
}

// ring is a fixed size circular buffer holding up to len(items)-1 elements; head == tail means it's empty.
type ring[T any] struct {
	// head points to the first element.
	head int

	// tail points to the next free slot at the end.
	tail int

	items []T
}

func newRing[T any](capacity int) ring[T] {
	return ring[T]{items: make([]T, capacity+1)}
}

func (r *ring[T]) full() bool {
	return r.len() >= len(r.items)-1
}

func (r *ring[T]) len() int {
	// The start of the buffer may be at an index after the end, count the elements after head then those before tail
	if r.head > r.tail {
		return len(r.items) - r.head + r.tail
	}

	return r.tail - r.head
}

func (r *ring[T]) at(i int) T {
	return r.items[mod(r.head+i, len(r.items))]
}

func (r *ring[T]) pushFront(v T) {
	r.head = mod(r.head-1, len(r.items))
	r.items[r.head] = v
}

func (r *ring[T]) pushBack(v T) {
	r.items[r.tail] = v
	r.tail = mod(r.tail+1, len(r.items))
}

func (r *ring[T]) popFront() (T, bool) {
	if r.len() == 0 {
		return *new(T), false
	}

	v := r.items[r.head]

	// Zero the slot so popped documents can be garbage collected
	r.items[r.head] = *new(T)
	r.head = mod(r.head+1, len(r.items))

	return v, true
}

func (r *ring[T]) popBack() (T, bool) {
	if r.len() == 0 {
		return *new(T), false
	}

	r.tail = mod(r.tail-1, len(r.items))

	v := r.items[r.tail]
	r.items[r.tail] = *new(T)

	return v, true
}
