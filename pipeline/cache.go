package pipeline

import (
	"context"

	"github.com/gogpu/gputypes"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/internal/logging"
	"github.com/gogpu/triangle/shader"
)

// DefaultCacheSize is the number of formats a Cache keeps.
const DefaultCacheSize = 4

// Cache holds the pipelines of one program on one device, keyed by target
// format. A pipeline is rebuilt only when a format is missing; evicted
// pipelines are released.
type Cache struct {
	dc      *device.Context
	program shader.Program
	cache   *lru.Cache[gputypes.TextureFormat, *Pipeline]
	builds  int
}

// NewCache returns a cache of at most size pipelines. A size below one
// uses DefaultCacheSize.
func NewCache(dc *device.Context, program shader.Program, size int) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, _ := lru.NewWithEvict[gputypes.TextureFormat, *Pipeline](size, releaseOnEviction)
	return &Cache{dc: dc, program: program, cache: cache}
}

// Get returns the pipeline for format, building it on a miss.
func (c *Cache) Get(ctx context.Context, format gputypes.TextureFormat) (*Pipeline, error) {
	if p, ok := c.cache.Get(format); ok {
		return p, nil
	}

	p, err := Build(ctx, c.dc, format, c.program)
	if err != nil {
		return nil, err
	}
	c.builds++
	c.cache.Add(format, p)
	return p, nil
}

// Builds returns the number of pipelines built by the cache.
func (c *Cache) Builds() int { return c.builds }

// Len returns the number of cached pipelines.
func (c *Cache) Len() int { return c.cache.Len() }

// Purge releases every cached pipeline.
func (c *Cache) Purge() { c.cache.Purge() }

func releaseOnEviction(format gputypes.TextureFormat, p *Pipeline) {
	logging.Logger().Debug("pipeline: evicted", "format", format.String())
	p.Release()
}
