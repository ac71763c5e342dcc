package jobs

import (
	"fmt"
	"sync"
)

// ThreadRegistry remembers the chat timestamp of the first message posted
// for each pull request so follow-up events thread under it. It is
// deliberately in-memory only; thread continuity is best-effort across the
// lifetime of the process.
type ThreadRegistry struct {
	mu      sync.Mutex
	parents map[string]string
}

// NewThreadRegistry creates an empty registry.
func NewThreadRegistry() *ThreadRegistry {
	return &ThreadRegistry{parents: make(map[string]string)}
}

// ThreadKey identifies a pull request across events.
func ThreadKey(repoFullName string, prID int64) string {
	return fmt.Sprintf("%s#%d", repoFullName, prID)
}

// Parent returns the recorded parent timestamp for a pull request, or ""
// when no message has been posted for it yet.
func (r *ThreadRegistry) Parent(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parents[key]
}

// Record stores ts as the thread parent for a pull request. The first
// recorded timestamp wins; later messages are replies and must not become
// the parent.
func (r *ThreadRegistry) Record(key, ts string) {
	if ts == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parents[key]; !ok {
		r.parents[key] = ts
	}
}
