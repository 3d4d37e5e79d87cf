// File: promise/combine_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package promise

import (
	"testing"
	"time"
)

func TestGatherKeepsInputOrder(t *testing.T) {
	a, b := New(), New()
	out := Gather(a, b)

	// Resolve out of order; slots must stay in input order.
	b.Resolve("YY")
	a.Resolve("X")

	var got []any
	out.Subscribe(func(vals ...any) { got = vals })
	if len(got) != 2 || got[0] != "X" || got[1] != "YY" {
		t.Errorf("gather received %v, want [X YY]", got)
	}
}

func TestGatherEmptyResolvesImmediately(t *testing.T) {
	out := Gather()
	if !out.Resolved() {
		t.Fatal("empty gather not resolved")
	}
	out.Subscribe(func(vals ...any) {
		if len(vals) != 0 {
			t.Errorf("empty gather resolved with %v", vals)
		}
	})
}

func TestGatherWithNilTaskNeverCompletes(t *testing.T) {
	a := New()
	out := Gather(a, nil)
	a.Resolve("only")
	time.Sleep(20 * time.Millisecond)
	if out.Resolved() {
		t.Error("gather completed despite a nil task")
	}
}

func TestChainPipesValues(t *testing.T) {
	first := New()
	out := Chain(first,
		func(vals ...any) any { return vals[0].(int) + 1 },
		func(vals ...any) any { return vals[0].(int) * 10 },
	)
	first.Resolve(4)

	var got []any
	out.Subscribe(func(vals ...any) { got = vals })
	if len(got) != 1 || got[0] != 50 {
		t.Errorf("chain produced %v, want [50]", got)
	}
}

func TestChainAwaitsPromiseSteps(t *testing.T) {
	first := New()
	inner := New()
	out := Chain(first,
		func(vals ...any) any { return inner },
		func(vals ...any) any { return vals[0].(string) + "!" },
	)
	first.Resolve("start")
	if out.Resolved() {
		t.Fatal("chain completed before the inner promise resolved")
	}
	inner.Resolve("async")

	var got []any
	out.Subscribe(func(vals ...any) { got = vals })
	if len(got) != 1 || got[0] != "async!" {
		t.Errorf("chain produced %v, want [async!]", got)
	}
}

func TestChainWithNoSteps(t *testing.T) {
	first := New()
	out := Chain(first)
	first.Resolve("through")
	var got []any
	out.Subscribe(func(vals ...any) { got = vals })
	if len(got) != 1 || got[0] != "through" {
		t.Errorf("chain produced %v, want [through]", got)
	}
}
