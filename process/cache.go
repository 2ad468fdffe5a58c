package process

import (
	"context"
	"errors"

	"openports/logging"
)

type cachedName struct {
	info ProcessInfo
	err  error
}

// CachedResolver memoises names for the duration of one tick. A connection
// table commonly lists the same pid dozens of times; Reset must be called
// between ticks so a recycled pid is never reported under a stale name.
type CachedResolver struct {
	next    NameResolver
	entries map[ProcessID]cachedName
	log     logging.Logger

	hits   int
	misses int
}

// NewCachedResolver wraps next with a per-tick cache
func NewCachedResolver(next NameResolver) *CachedResolver {
	return &CachedResolver{
		next:    next,
		entries: make(map[ProcessID]cachedName),
		log:     logging.New("process-cache"),
	}
}

func (c *CachedResolver) ProcessName(ctx context.Context, pid ProcessID) (string, error) {
	if e, ok := c.entries[pid]; ok {
		c.hits++
		return e.info.Name, e.err
	}
	c.misses++

	name, err := c.next.ProcessName(ctx, pid)
	if err != nil && !errors.Is(err, ErrNotRunning) {
		c.log.Debugln("Failed to resolve process", pid, err)
	}
	c.entries[pid] = cachedName{info: ProcessInfo{PID: pid, Name: name}, err: err}
	return name, err
}

// Reset drops every cached name
func (c *CachedResolver) Reset() {
	if c.hits+c.misses > 0 {
		c.log.Debugln("Name cache hits:", c.hits, "misses:", c.misses, "processes:", len(c.entries))
	}
	clear(c.entries)
	c.hits, c.misses = 0, 0
}
