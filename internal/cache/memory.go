package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache is an in-process LRU bounded by entry count.
type MemoryCache struct {
	lru *lru.Cache[string, Entry]
}

// NewMemoryCache creates an LRU cache holding at most maxEntries renderings.
func NewMemoryCache(maxEntries int) (*MemoryCache, error) {
	c, err := lru.New[string, Entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCache{lru: c}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	e, ok := c.lru.Get(key)
	return e, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, entry Entry) error {
	c.lru.Add(key, entry)
	return nil
}

func (c *MemoryCache) Remove(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *MemoryCache) Len(context.Context) (int, error) {
	return c.lru.Len(), nil
}
