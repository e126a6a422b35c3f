package telemetry

// ring is a fixed-capacity FIFO buffer. Once full, appending evicts the
// oldest entry. It carries no lock of its own; the owning sessionStore
// serializes access so snapshots can read all three rings under one section.
type ring[T any] struct {
	entries  []T
	capacity int
	head     int // index where the next write goes once full
	full     bool
}

func newRing[T any](capacity int) *ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring[T]{
		entries:  make([]T, 0, capacity),
		capacity: capacity,
	}
}

// append adds one entry, evicting the oldest when at capacity.
func (r *ring[T]) append(entry T) {
	if !r.full {
		r.entries = append(r.entries, entry)
		if len(r.entries) == r.capacity {
			r.full = true
		}
		return
	}
	r.entries[r.head] = entry
	r.head = (r.head + 1) % r.capacity
}

// all returns the buffered entries oldest first.
func (r *ring[T]) all() []T {
	if len(r.entries) == 0 {
		return nil
	}
	result := make([]T, len(r.entries))
	if !r.full {
		copy(result, r.entries)
		return result
	}
	n := copy(result, r.entries[r.head:])
	copy(result[n:], r.entries[:r.head])
	return result
}

// filtered returns entries passing the filter, oldest first.
func (r *ring[T]) filtered(keep func(T) bool) []T {
	all := r.all()
	if all == nil {
		return nil
	}
	result := make([]T, 0, len(all))
	for _, entry := range all {
		if keep(entry) {
			result = append(result, entry)
		}
	}
	return result
}

// len returns the number of buffered entries.
func (r *ring[T]) len() int {
	return len(r.entries)
}

// clear drops all buffered entries.
func (r *ring[T]) clear() {
	r.entries = r.entries[:0]
	r.head = 0
	r.full = false
}
