// File: promise/promise_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package promise

import (
	"testing"
	"time"
)

func TestSubscribeThenResolve(t *testing.T) {
	p := New()
	var got []any
	calls := 0
	p.Subscribe(func(vals ...any) {
		got = vals
		calls++
	})
	p.Resolve("a", 2)

	if calls != 1 {
		t.Fatalf("sink called %d times, want 1", calls)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != 2 {
		t.Errorf("sink received %v, want [a 2]", got)
	}
}

func TestResolveThenSubscribe(t *testing.T) {
	p := New()
	p.Resolve("late")

	var got []any
	calls := 0
	p.Subscribe(func(vals ...any) {
		got = vals
		calls++
	})
	if calls != 1 {
		t.Fatalf("sink called %d times, want 1", calls)
	}
	if len(got) != 1 || got[0] != "late" {
		t.Errorf("sink received %v, want [late]", got)
	}
}

func TestSecondResolveIsIgnored(t *testing.T) {
	p := New()
	p.Resolve("first")
	p.Resolve("second")

	var got []any
	p.Subscribe(func(vals ...any) { got = vals })
	if len(got) != 1 || got[0] != "first" {
		t.Errorf("sink received %v, want the first resolution", got)
	}
}

func TestResolveWithNoValues(t *testing.T) {
	p := New()
	p.Resolve()
	called := false
	p.Subscribe(func(vals ...any) {
		called = true
		if len(vals) != 0 {
			t.Errorf("sink received %v, want no values", vals)
		}
	})
	if !called {
		t.Error("sink not called")
	}
}

func TestAwaitBlocksUntilResolve(t *testing.T) {
	p := New()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve(42)
	}()
	vals := p.Await()
	if len(vals) != 1 || vals[0] != 42 {
		t.Errorf("Await returned %v, want [42]", vals)
	}
}

func TestUnresolvedPromiseNeverFires(t *testing.T) {
	p := New()
	fired := false
	p.Subscribe(func(...any) { fired = true })
	time.Sleep(20 * time.Millisecond)
	if fired {
		t.Error("sink fired without a resolve")
	}
	if p.Resolved() {
		t.Error("promise reports resolved")
	}
}
