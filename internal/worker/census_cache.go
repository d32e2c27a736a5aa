package worker

import (
	"sync"
	"time"

	"github.com/vhubert/fleetctl/internal/model"
)

// CensusCache holds the most recent artifact census snapshot taken by
// the background refresh task. Readers get a copy; a zero cache
// reports no snapshot.
type CensusCache struct {
	mu     sync.RWMutex
	report []model.ArtifactCount
	taken  time.Time
}

// NewCensusCache returns an empty cache.
func NewCensusCache() *CensusCache {
	return &CensusCache{}
}

// Set replaces the snapshot.
func (c *CensusCache) Set(report []model.ArtifactCount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = make([]model.ArtifactCount, len(report))
	copy(c.report, report)
	c.taken = time.Now()
}

// Get returns the snapshot, when it was taken, and whether one exists.
func (c *CensusCache) Get() ([]model.ArtifactCount, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.taken.IsZero() {
		return nil, time.Time{}, false
	}
	report := make([]model.ArtifactCount, len(c.report))
	copy(report, c.report)
	return report, c.taken, true
}
