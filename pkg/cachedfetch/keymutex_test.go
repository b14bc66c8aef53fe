package cachedfetch

import (
	"sync"
	"testing"
)

func TestKeyMutexTableExcludes(t *testing.T) {
	table := newKeyMutexTable()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release := table.Acquire("same-key")
			defer release()

			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
	if table.Len() != 0 {
		t.Errorf("table still holds %d keys after all releases", table.Len())
	}
}

func TestKeyMutexTableIndependentKeys(t *testing.T) {
	table := newKeyMutexTable()

	releaseA := table.Acquire("a")

	// A different key must not block behind "a".
	done := make(chan struct{})
	go func() {
		releaseB := table.Acquire("b")
		releaseB()
		close(done)
	}()
	<-done

	if table.Len() != 1 {
		t.Errorf("table holds %d keys, want just the held one", table.Len())
	}

	releaseA()
	if table.Len() != 0 {
		t.Errorf("table holds %d keys after release, want 0", table.Len())
	}
}
