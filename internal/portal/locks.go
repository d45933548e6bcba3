package portal

import "sync"

// keyedMutex hands out one mutex per key. Submissions for the same team id
// serialize on it, which closes the window between the submission-count
// check and the insert. Entries are never evicted; the key space is team
// ids for a single event, small enough to keep.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
