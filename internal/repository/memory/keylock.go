package memory

import (
	"context"
	"slices"
	"sync"
)

// keyLocks hands out per-key mutual exclusion. Entries are reference counted
// and dropped once nobody holds or waits for them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// acquire locks all keys in sorted order so that callers locking overlapping
// key sets cannot deadlock. The returned func releases them.
func (k *keyLocks) acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]string, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			k.unlock(held[i])
		}
	}

	for _, key := range sorted {
		l := k.ref(key)
		select {
		case l.sem <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			k.unref(key)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func (k *keyLocks) ref(key string) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	return l
}

func (k *keyLocks) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l := k.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *keyLocks) unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	k.mu.Unlock()

	<-l.sem
	k.unref(key)
}

func teamKey(name string) string     { return "team:" + name }
func userKey(username string) string { return "user:" + username }
