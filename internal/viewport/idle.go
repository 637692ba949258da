package viewport

import "time"

// DefaultGrace is how long a cached object may go untouched before a sweep
// disposes of it.
const DefaultGrace = 5 * time.Second

// IdleTracker remembers when keyed objects were last used. The owner touches
// what it draws and calls Sweep once per frame.
type IdleTracker[K comparable] struct {
	Grace time.Duration

	seen map[K]time.Time
}

func NewIdleTracker[K comparable](grace time.Duration) *IdleTracker[K] {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &IdleTracker[K]{Grace: grace, seen: map[K]time.Time{}}
}

func (t *IdleTracker[K]) Touch(key K, now time.Time) {
	t.seen[key] = now
}

func (t *IdleTracker[K]) Forget(key K) {
	delete(t.seen, key)
}

func (t *IdleTracker[K]) Len() int {
	return len(t.seen)
}

// Sweep calls dispose for every key idle for longer than Grace, forgets it,
// and returns how many were disposed. Keys for which keep reports true are
// treated as touched now.
func (t *IdleTracker[K]) Sweep(now time.Time, keep func(K) bool, dispose func(K)) int {
	n := 0
	for k, last := range t.seen {
		if keep != nil && keep(k) {
			t.seen[k] = now
			continue
		}
		if now.Sub(last) <= t.Grace {
			continue
		}
		delete(t.seen, k)
		if dispose != nil {
			dispose(k)
		}
		n++
	}
	return n
}
