package lock

import (
	"context"
	"sync"
	"testing"
)

func TestAtomicGuard_Exclusive(t *testing.T) {
	guard := NewAtomicGuard()
	ctx := context.Background()

	release, ok := guard.TryAcquire(ctx)
	if !ok {
		t.Fatal("first acquire must succeed")
	}

	if _, ok := guard.TryAcquire(ctx); ok {
		t.Fatal("second acquire while held must fail")
	}

	release()

	release, ok = guard.TryAcquire(ctx)
	if !ok {
		t.Fatal("acquire after release must succeed")
	}
	release()
}

func TestAtomicGuard_Concurrent(t *testing.T) {
	guard := NewAtomicGuard()
	ctx := context.Background()

	const attempts = 50
	var wg sync.WaitGroup
	acquired := make(chan func(), attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if release, ok := guard.TryAcquire(ctx); ok {
				acquired <- release
			}
		}()
	}
	wg.Wait()
	close(acquired)

	var releases []func()
	for r := range acquired {
		releases = append(releases, r)
	}
	if len(releases) != 1 {
		t.Fatalf("exactly one goroutine may win, got %d", len(releases))
	}
	releases[0]()

	if release, ok := guard.TryAcquire(ctx); !ok {
		t.Fatal("guard must be free again after the winner released")
	} else {
		release()
	}
}
