package resilience

import "sync"

// SingleFlight collapses concurrent calls with the same key into one
// execution; latecomers block until the leader finishes and receive its
// result. The script client keys reads by action and query so a burst of
// identical GETs costs one round trip.
type SingleFlight struct {
	mu     sync.Mutex
	flight map[string]*flightCall
}

type flightCall struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn at most once per key at a time. The bool reports whether the
// result came from another caller's execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.flight == nil {
		g.flight = make(map[string]*flightCall)
	}
	if c, ok := g.flight[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &flightCall{done: make(chan struct{})}
	g.flight[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	close(c.done)

	g.mu.Lock()
	delete(g.flight, key)
	g.mu.Unlock()

	return c.val, c.err, false
}
