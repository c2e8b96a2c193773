package services

import "sync"

// guildLocks hands out one mutex per guild. Entries are dropped once no
// goroutine holds or waits on them.
type guildLocks struct {
	mu    sync.Mutex
	locks map[string]*guildLock
}

type guildLock struct {
	mu   sync.Mutex
	refs int
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*guildLock)}
}

// Lock blocks until the guild's lock is held and returns its release func.
func (g *guildLocks) Lock(guildID string) func() {
	g.mu.Lock()
	l, ok := g.locks[guildID]
	if !ok {
		l = &guildLock{}
		g.locks[guildID] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, guildID)
		}
		g.mu.Unlock()
	}
}

func (g *guildLocks) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
