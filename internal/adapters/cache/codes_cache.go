package cache

import (
	"fmt"
	"slices"

	"github.com/dgraph-io/ristretto"
)

// RistrettoCodesCache memoizes the sorted currency code list of a snapshot date.
type RistrettoCodesCache struct {
	cache *ristretto.Cache
}

func NewCodesCache(maxItems int64) (*RistrettoCodesCache, error) {
	if maxItems <= 0 {
		maxItems = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
		// cost is one per date, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create codes cache failed: %w", err)
	}
	return &RistrettoCodesCache{cache: c}, nil
}

func (c *RistrettoCodesCache) Get(date string) ([]string, bool) {
	if v, ok := c.cache.Get(date); ok {
		codes, ok := v.([]string)
		return slices.Clone(codes), ok
	}
	return nil, false
}

func (c *RistrettoCodesCache) Set(date string, codes []string) {
	c.cache.Set(date, slices.Clone(codes), 1)
}

// Wait blocks until buffered writes are applied.
func (c *RistrettoCodesCache) Wait() { c.cache.Wait() }

func (c *RistrettoCodesCache) Close() { c.cache.Close() }
