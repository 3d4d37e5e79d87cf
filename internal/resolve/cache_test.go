// File: internal/resolve/cache_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package resolve

import (
	"errors"
	"testing"
)

func TestLiteralAddressesBypassTheResolver(t *testing.T) {
	c := NewCache(8)
	c.SetResolver(func(host string) ([]string, error) {
		t.Errorf("resolver called for literal %q", host)
		return nil, nil
	})
	addr, err := c.Lookup("192.168.1.5")
	if err != nil || addr != "192.168.1.5" {
		t.Errorf("Lookup = %q, %v", addr, err)
	}
}

func TestSecondLookupIsServedFromCache(t *testing.T) {
	c := NewCache(8)
	calls := 0
	c.SetResolver(func(host string) ([]string, error) {
		calls++
		return []string{"10.1.2.3"}, nil
	})

	for i := 0; i < 3; i++ {
		addr, err := c.Lookup("db.internal")
		if err != nil || addr != "10.1.2.3" {
			t.Fatalf("Lookup = %q, %v", addr, err)
		}
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want 1", calls)
	}
}

func TestResolverErrorsPropagate(t *testing.T) {
	c := NewCache(8)
	c.SetResolver(func(host string) ([]string, error) {
		return nil, errors.New("NXDOMAIN")
	})
	if _, err := c.Lookup("ghost.internal"); err == nil {
		t.Error("Lookup swallowed the resolver error")
	}
}

func TestEmptyAnswerIsAnError(t *testing.T) {
	c := NewCache(8)
	c.SetResolver(func(host string) ([]string, error) {
		return nil, nil
	})
	if _, err := c.Lookup("empty.internal"); err == nil {
		t.Error("Lookup accepted an empty answer")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	calls := map[string]int{}
	c.SetResolver(func(host string) ([]string, error) {
		calls[host]++
		return []string{"10.0.0.1"}, nil
	})

	c.Lookup("a.internal")
	c.Lookup("b.internal")
	c.Lookup("c.internal") // evicts a.internal
	c.Lookup("a.internal")

	if calls["a.internal"] != 2 {
		t.Errorf("a.internal resolved %d times, want 2 after eviction", calls["a.internal"])
	}
}
