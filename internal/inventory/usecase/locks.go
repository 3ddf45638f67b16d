package usecase

import "sync"

// productLocks serializes mutations per product id: a second mutation against
// the same product waits until the first has fully settled (memory + storage).
// Entries are reference-counted so the map does not grow with the catalogue.
type productLocks struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newProductLocks() *productLocks {
	return &productLocks{m: map[string]*lockEntry{}}
}

func (l *productLocks) lock(id string) {
	l.mu.Lock()
	e := l.m[id]
	if e == nil {
		e = &lockEntry{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *productLocks) unlock(id string) {
	l.mu.Lock()
	e := l.m[id]
	e.refs--
	if e.refs == 0 {
		delete(l.m, id)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}

// lockPair locks two ids in a fixed order so that a rename (old id + new id)
// cannot deadlock against another rename going the opposite way.
func (l *productLocks) lockPair(a, b string) {
	if a == b {
		l.lock(a)
		return
	}
	if a > b {
		a, b = b, a
	}
	l.lock(a)
	l.lock(b)
}

func (l *productLocks) unlockPair(a, b string) {
	if a == b {
		l.unlock(a)
		return
	}
	if a > b {
		a, b = b, a
	}
	l.unlock(b)
	l.unlock(a)
}
