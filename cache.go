package dtmprofile

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rasterCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dtmprofile_raster_cache_hits_total",
		Help: "The total number of hits on the decoded raster cache",
	})
	rasterCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dtmprofile_raster_cache_misses_total",
		Help: "The total number of misses on the decoded raster cache",
	})
	rasterCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dtmprofile_raster_cache_evictions_total",
		Help: "The total number of evictions from the decoded raster cache",
	})
)

// A RasterCache keeps decoded rasters keyed by identifier so repeated
// profile queries reuse one decode. It is owned by the calling layer;
// grids are immutable, so a cached grid may be shared freely.
type RasterCache struct {
	mutex sync.Mutex
	grids *lru.Cache[string, *RasterGrid]
}

// NewRasterCache returns a RasterCache holding at most size grids.
func NewRasterCache(size int) (*RasterCache, error) {
	grids, err := lru.NewWithEvict(size, func(string, *RasterGrid) {
		rasterCacheEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}
	return &RasterCache{
		grids: grids,
	}, nil
}

// Get returns the cached grid for id, if present.
func (c *RasterCache) Get(id string) (*RasterGrid, bool) {
	grid, ok := c.grids.Get(id)
	if ok {
		rasterCacheHits.Inc()
	} else {
		rasterCacheMisses.Inc()
	}
	return grid, ok
}

// GetOrLoad returns the cached grid for id, decoding it with load on a
// miss. Concurrent callers for the same id decode at most once.
func (c *RasterCache) GetOrLoad(id string, load func() (*RasterGrid, error)) (*RasterGrid, error) {
	if grid, ok := c.grids.Get(id); ok {
		rasterCacheHits.Inc()
		return grid, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if grid, ok := c.grids.Get(id); ok {
		rasterCacheHits.Inc()
		return grid, nil
	}

	rasterCacheMisses.Inc()

	grid, err := load()
	if err != nil {
		return nil, err
	}
	c.grids.Add(id, grid)
	return grid, nil
}

// Remove drops the grid for id, e.g. when its DTM is unloaded.
func (c *RasterCache) Remove(id string) {
	c.grids.Remove(id)
}

// Purge drops all cached grids.
func (c *RasterCache) Purge() {
	c.grids.Purge()
}
