package supervisor

import "sync"

// Guard implements the task invariant from spec §4.G: "any task
// clearing a computed flag first sets a guard marker so a timed-out
// task cannot consume a flag that a later run set; markers are
// cleared at the start of each run." A flag here is any condition a
// task computes is still true and then clears after acting on it
// (e.g. "a health scan is due"); without the marker, a task that times
// out after starting its work could race a later run that re-set the
// flag, clearing a flag the later run still needs to see.
type Guard struct {
	mu      sync.Mutex
	markers map[string]int64
	next    int64
}

func NewGuard() *Guard {
	return &Guard{markers: make(map[string]int64)}
}

// Begin clears any stale marker for key and stamps a fresh token for
// this run, returned so the caller can pass it to Consume once its
// work finishes.
func (g *Guard) Begin(key string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	g.markers[key] = g.next
	return g.next
}

// Consume clears the flag for key only if token still matches the
// marker Begin last set — if a newer run called Begin after this run
// started (e.g. because this run timed out), the token is stale and
// Consume is a no-op, leaving the flag for the newer run to handle.
func (g *Guard) Consume(key string, token int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.markers[key] != token {
		return false
	}
	delete(g.markers, key)
	return true
}
