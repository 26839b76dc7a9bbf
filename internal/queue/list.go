package queue

// node is one element of the doubly linked list backing a queue.
type node[T any] struct {
	value T
	prev  *node[T]
	next  *node[T]
}

// list is an ordered sequence with O(1) push/pop at the ends and O(n)
// positional access. Not safe for concurrent use; callers lock.
type list[T any] struct {
	head *node[T]
	tail *node[T]
	size int
}

func (l *list[T]) len() int { return l.size }

// push appends value at the tail.
func (l *list[T]) push(value T) {
	n := &node[T]{value: value}
	if l.tail == nil {
		l.head = n
		l.tail = n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.size++
}

// insertAt places value so it ends up at the given index. Indices are
// clamped: negative inserts at the front, past-the-end appends.
func (l *list[T]) insertAt(index int, value T) {
	if index < 0 {
		index = 0
	}
	if index >= l.size {
		l.push(value)
		return
	}
	at := l.nodeAt(index)
	n := &node[T]{value: value, prev: at.prev, next: at}
	if at.prev == nil {
		l.head = n
	} else {
		at.prev.next = n
	}
	at.prev = n
	l.size++
}

// pop removes and returns the head value. ok is false on an empty list.
func (l *list[T]) pop() (value T, ok bool) {
	if l.head == nil {
		return value, false
	}
	n := l.head
	l.unlink(n)
	return n.value, true
}

// removeAt removes and returns the value at index. ok is false when the
// index is out of range.
func (l *list[T]) removeAt(index int) (value T, ok bool) {
	if index < 0 || index >= l.size {
		return value, false
	}
	n := l.nodeAt(index)
	l.unlink(n)
	return n.value, true
}

// peek returns the head value without removing it.
func (l *list[T]) peek() (value T, ok bool) {
	if l.head == nil {
		return value, false
	}
	return l.head.value, true
}

func (l *list[T]) clear() {
	l.head = nil
	l.tail = nil
	l.size = 0
}

// items returns a snapshot slice in queue order.
func (l *list[T]) items() []T {
	out := make([]T, 0, l.size)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// contains reports whether any element satisfies match.
func (l *list[T]) contains(match func(T) bool) bool {
	for n := l.head; n != nil; n = n.next {
		if match(n.value) {
			return true
		}
	}
	return false
}

func (l *list[T]) nodeAt(index int) *node[T] {
	n := l.head
	for i := 0; i < index; i++ {
		n = n.next
	}
	return n
}

func (l *list[T]) unlink(n *node[T]) {
	if n.prev == nil {
		l.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		l.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
	l.size--
}
