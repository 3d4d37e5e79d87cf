// File: promise/combine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Combinators over promises: Gather collects a fixed set of tasks into
// one resolution, Chain pipes each step's values into the next.

package promise

import (
	"sync"

	"github.com/golang/glog"
)

// Gather subscribes to every task and resolves with one slot per task,
// in input order, once all of them resolved. An empty input resolves
// immediately with no values.
//
// A nil task is logged with its index and never counts toward
// completion, so the gather never fires. Known limitation.
func Gather(tasks ...*Promise) *Promise {
	out := New()
	if len(tasks) == 0 {
		out.Resolve()
		return out
	}

	var mu sync.Mutex
	slots := make([]any, len(tasks))
	remaining := len(tasks)

	for i, task := range tasks {
		if task == nil {
			glog.Errorf("gather: task %d is nil, gather will not complete", i)
			continue
		}
		idx := i
		task.Subscribe(func(vals ...any) {
			mu.Lock()
			slots[idx] = slotValue(vals)
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				out.Resolve(slots...)
			}
		})
	}
	return out
}

// slotValue flattens a single-value resolution into the value itself;
// multi-value resolutions keep the slice.
func slotValue(vals []any) any {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals
}

// Step transforms the values of the previous stage. Returning a
// *Promise makes the chain await it; any other value feeds the next
// step directly.
type Step func(vals ...any) any

// Chain pipes the resolution of first through steps in order and
// returns a promise for the final value.
func Chain(first *Promise, steps ...Step) *Promise {
	out := New()
	runChain(first, steps, out)
	return out
}

func runChain(cur *Promise, steps []Step, out *Promise) {
	cur.Subscribe(func(vals ...any) {
		if len(steps) == 0 {
			out.Resolve(vals...)
			return
		}
		next := steps[0](vals...)
		if p, ok := next.(*Promise); ok {
			runChain(p, steps[1:], out)
			return
		}
		resolved := New()
		if next == nil {
			resolved.Resolve()
		} else {
			resolved.Resolve(next)
		}
		runChain(resolved, steps[1:], out)
	})
}
