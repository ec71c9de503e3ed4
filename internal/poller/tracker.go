package poller

import (
	"sync"

	"github.com/osmak/agentctl/internal/models"
)

// Tracker holds the most recently observed task snapshot, shared between
// the poll chains that write it and the presentation layer that reads
// it. Each chain gets a generation at Begin time; a publish from a
// superseded generation is dropped, so a late response from an old
// chain can never clobber the snapshot of the chain started after it.
type Tracker struct {
	mu      sync.RWMutex
	gen     uint64
	current *models.TaskResult
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin starts a new poll session and returns its generation. Any chain
// holding an older generation is superseded from this point on.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	return t.gen
}

// publish stores the snapshot if gen is still the active generation.
// Returns false when the write was dropped as stale.
func (t *Tracker) publish(gen uint64, snapshot *models.TaskResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		return false
	}

	t.current = snapshot
	return true
}

// Current returns the most recently published snapshot, or nil if no
// chain has published yet.
func (t *Tracker) Current() *models.TaskResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.current
}
