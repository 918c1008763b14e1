// Package deque provides a double ended queue implemented using a growable ring buffer, cursors use it to buffer the
// documents of the batches they've fetched.
package deque

import "iter"

const (
	// defaultInitialCapacity defines the initial capacity of the ring buffer.
	defaultInitialCapacity = 2

	// growthFactor is the factor by which the capacity increases when we have to grow it.
	growthFactor = 2
)

// Deque is a double-ended queue. It has efficient (i.e. constant time) pop and push to both ends.
//
// NOTE: Not safe for concurrent use.
type Deque[T any] struct {
	rb ring[T]
}

// NewDeque creates a deque of Ts with a default capacity.
func NewDeque[T any]() *Deque[T] {
	return NewDequeWithCapacity[T](defaultInitialCapacity)
}

// NewDequeWithCapacity creates a new deque of Ts with the given initial capacity.
func NewDequeWithCapacity[T any](capacity int) *Deque[T] {
	return &Deque[T]{rb: newRing[T](max(capacity, 1))}
}

// Len returns the number of items currently in the deque.
func (d *Deque[T]) Len() int {
	return d.rb.len()
}

// Empty returns a boolean indicating whether the deque contains no items.
func (d *Deque[T]) Empty() bool {
	return d.Len() == 0
}

// grow ensures there's space for at least n more items, copying the existing items into a larger buffer if required.
func (d *Deque[T]) grow(n int) {
	length := d.rb.len()
	if length+n <= len(d.rb.items)-1 {
		return
	}

	grown := newRing[T](max(length*growthFactor, length+n))

	for i := 0; i < length; i++ {
		grown.pushBack(d.rb.at(i))
	}

	d.rb = grown
}

// PushBack adds v to the end of the deque.
func (d *Deque[T]) PushBack(v T) {
	d.grow(1)
	d.rb.pushBack(v)
}

// PushBackAll adds every element of vs to the end of the deque, in order.
func (d *Deque[T]) PushBackAll(vs ...T) {
	d.grow(len(vs))

	for _, v := range vs {
		d.rb.pushBack(v)
	}
}

// PushFront adds v to the start of the deque.
func (d *Deque[T]) PushFront(v T) {
	d.grow(1)
	d.rb.pushFront(v)
}

// PopBack pops an item from the back of the deque, returning the default value and false if it is empty.
func (d *Deque[T]) PopBack() (T, bool) {
	return d.rb.popBack()
}

// PopFront pops an item from the front of the deque, returning the default value and false if it is empty.
func (d *Deque[T]) PopFront() (T, bool) {
	return d.rb.popFront()
}

// PeekFront returns the item at the front of the deque without removing it.
func (d *Deque[T]) PeekFront() (T, bool) {
	if d.Empty() {
		return *new(T), false
	}

	return d.rb.at(0), true
}

// Clear removes all items from the deque.
func (d *Deque[T]) Clear() {
	clear(d.rb.items)
	d.rb.head, d.rb.tail = 0, 0
}

// All returns an iterator over the items in the deque, starting from the front.
func (d *Deque[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < d.rb.len(); i++ {
			if !yield(d.rb.at(i)) {
				return
			}
		}
	}
}

// Slice returns a copy of the items in the deque, starting from the front.
func (d *Deque[T]) Slice() []T {
	s := make([]T, 0, d.Len())

	for v := range d.All() {
		s = append(s, v)
	}

	return s
}
