package cart

import "sync"

// keyedMutex serializes work per string key. It backs the cart service's
// read-modify-write cycle so two concurrent mutations of the same cart
// identity cannot interleave between load and save.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*keyEntry),
	}
}

// Lock acquires the mutex for the key and returns its unlock function.
// Entries are reference counted and removed once the last holder
// releases, so the map does not grow with the number of identities seen.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
