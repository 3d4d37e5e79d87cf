// File: internal/resolve/cache.go
// Package resolve caches host name resolution for outbound connects,
// so repeated dials to the same peer skip the resolver round trip.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package resolve

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize bounds the number of cached hosts per worker.
const DefaultCacheSize = 256

// cacheItem is one resolved host with its expiry.
type cacheItem struct {
	addr       string
	expireTime time.Time
}

// Cache is an LRU of host→address entries with a fixed TTL.
type Cache struct {
	mu    sync.Mutex
	hosts *lru.Cache
	ttl   time.Duration

	// lookupHost is swappable for tests.
	lookupHost func(host string) ([]string, error)
}

// NewCache creates a resolver cache holding up to max hosts.
func NewCache(max int) *Cache {
	return &Cache{
		hosts:      lru.New(max),
		ttl:        15 * time.Minute,
		lookupHost: net.LookupHost,
	}
}

// SetResolver replaces the underlying resolver function.
func (c *Cache) SetResolver(fn func(host string) ([]string, error)) {
	c.mu.Lock()
	c.lookupHost = fn
	c.mu.Unlock()
}

// Lookup returns a resolved address for host, consulting the cache
// first. Literal IP addresses pass through untouched.
func (c *Cache) Lookup(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	c.mu.Lock()
	if v, ok := c.hosts.Get(host); ok {
		item := v.(*cacheItem)
		if time.Now().Before(item.expireTime) {
			c.mu.Unlock()
			return item.addr, nil
		}
		c.hosts.Remove(host)
	}
	fn := c.lookupHost
	c.mu.Unlock()

	addrs, err := fn(host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: no addresses", host)
	}

	c.mu.Lock()
	c.hosts.Add(host, &cacheItem{addr: addrs[0], expireTime: time.Now().Add(c.ttl)})
	c.mu.Unlock()
	return addrs[0], nil
}
