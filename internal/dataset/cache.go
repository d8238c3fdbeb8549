package dataset

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal"
	"inequalitymap/internal/errors"
	"inequalitymap/ports"
)

// Snapshot is everything derived from one successful load. It is shared
// read-only by every request for the life of the process.
type Snapshot struct {
	Dataset  ownership.Dataset
	Ranges   map[ownership.Column]ownership.Range
	Years    []int // eligible years, ascending
	Source   string
	LoadedAt time.Time
}

// Status describes the cache for the status endpoint
type Status struct {
	Loaded    bool      `json:"loaded"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// Cache memoizes the dataset for the lifetime of the process. There is no
// expiry and no invalidation; a failed load is not remembered, so the next
// caller fetches again.
type Cache struct {
	source ports.DatasetSourcePort
	logger *internal.Logger
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *Snapshot
	lastErr  error
}

// NewCache creates an empty cache over source
func NewCache(source ports.DatasetSourcePort, logger *internal.Logger) *Cache {
	return &Cache{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// GetOrLoad returns the cached snapshot, loading it on first use.
// Concurrent first callers share a single load.
func (c *Cache) GetOrLoad(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	ch := c.group.DoChan("snapshot", func() (interface{}, error) {
		c.mu.RLock()
		existing := c.snapshot
		c.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}
		// detached from any single request so one cancelled caller does not
		// fail the others sharing this load
		return c.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for dataset load")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Status reports the cache state without triggering a load
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := Status{Source: c.source.Describe()}
	if c.snapshot != nil {
		status.Loaded = true
		status.Rows = c.snapshot.Dataset.Len()
		status.LoadedAt = c.snapshot.LoadedAt
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

func (c *Cache) load(ctx context.Context) (*Snapshot, error) {
	start := c.now()
	c.logger.Info("[DatasetCache] loading dataset from %s", c.source.Describe())

	ds, err := c.source.Load(ctx)
	if err == nil {
		var snap *Snapshot
		snap, err = BuildSnapshot(ds, c.source.Describe(), c.now())
		if err == nil {
			c.mu.Lock()
			c.snapshot = snap
			c.lastErr = nil
			c.mu.Unlock()

			c.logger.Info("[DatasetCache] cached %d rows, %d eligible years in %s",
				snap.Dataset.Len(), len(snap.Years), c.now().Sub(start).Round(time.Millisecond))
			return snap, nil
		}
	}

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.logger.Error("[DatasetCache] load failed: %v", err)
	return nil, err
}

// BuildSnapshot derives ranges and eligible years from a loaded dataset
func BuildSnapshot(ds ownership.Dataset, source string, loadedAt time.Time) (*Snapshot, error) {
	ranges, err := ownership.ComputeRanges(ds, ownership.MetricColumns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute metric ranges")
	}
	return &Snapshot{
		Dataset:  ds,
		Ranges:   ranges,
		Years:    ownership.EligibleYears(ds),
		Source:   source,
		LoadedAt: loadedAt,
	}, nil
}
