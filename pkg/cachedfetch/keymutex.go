package cachedfetch

import "sync"

// keyMutexTable hands out one mutex per in-flight key. Entries are reference
// counted and dropped as soon as the last holder releases, so the table never
// grows beyond the number of keys being fetched right now.
type keyMutexTable struct {
	mutex   sync.Mutex
	entries map[string]*keyMutexEntry
}

type keyMutexEntry struct {
	mutex sync.Mutex
	refs  int
}

func newKeyMutexTable() *keyMutexTable {
	return &keyMutexTable{
		entries: map[string]*keyMutexEntry{},
	}
}

// Acquire locks the mutex for key and returns the matching release func.
func (t *keyMutexTable) Acquire(key string) func() {
	t.mutex.Lock()
	entry, ok := t.entries[key]
	if !ok {
		entry = &keyMutexEntry{}
		t.entries[key] = entry
	}
	entry.refs++
	t.mutex.Unlock()

	entry.mutex.Lock()

	return func() {
		entry.mutex.Unlock()

		t.mutex.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(t.entries, key)
		}
		t.mutex.Unlock()
	}
}

// Len reports how many keys currently hold a mutex.
func (t *keyMutexTable) Len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return len(t.entries)
}
