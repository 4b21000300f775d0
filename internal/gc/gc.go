// Package gc implements component B: a tracing sweep guarded by a
// byte-budget threshold (spec.md §4.B). Values don't know they're garbage
// collected — gc.Arena is the only thing that registers, pins and sweeps
// them; internal/value stays free of any GC import.
package gc

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/value"
)

// roughly estimates a value's footprint for the byte-budget counter. This is
// deliberately coarse (spec.md §4.B only requires "estimated footprint") —
// exact sizing would need unsafe.Sizeof bookkeeping per variant.
const roughValueSize = 64

// Pin is a temporary GC root (spec.md's glossary: "a temporary root
// registered with the GC ensuring a value survives the next sweep
// regardless of refcount"). Tokens are uuid-based so callers have a
// comparable, loggable handle rather than a bare pointer — useful when a
// native module's Pool/Depool pair crosses a Go call boundary.
type Pin struct {
	id    uuid.UUID
	value *value.Value
}

// Root is anything the mark pass can walk to find live values: the global
// frame, each live call-stack frame, and the extern pool all implement it.
type Root interface {
	GCRoots() []*value.Value
}

// Arena owns the live-value set, the byte-budget threshold, and the pin
// table. One Arena exists per VM (spec.md §9: "the only true global is the
// registry of type vtables" — the arena itself is passed by reference, not
// a package-level singleton).
type Arena struct {
	threshold uint64
	live      uint64

	allocated map[*value.Value]struct{}
	pins      map[uuid.UUID]*value.Value

	roots []Root

	freed   int
	swept   int
	onFree  func(v *value.Value)
}

// New builds an Arena with the given byte threshold (0 disables automatic
// sweeping; Collect can still be invoked explicitly, e.g. by the
// gc_collect() builtin in spec.md §8 scenario 4).
func New(threshold uint64) *Arena {
	return &Arena{
		threshold: threshold,
		allocated: make(map[*value.Value]struct{}),
		pins:      make(map[uuid.UUID]*value.Value),
	}
}

// ParseThreshold parses the size part of a CLI-style `--gc=10M` argument
// (e.g. "10M") via go-humanize,
// which understands the `K`/`M`/`G` suffixes spec.md §6 asks for.
func ParseThreshold(s string) (uint64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, herror.Newf(herror.Generic, "invalid GC threshold %q: %v", s, err)
	}
	return n, nil
}

// Threshold reports the configured byte budget.
func (a *Arena) Threshold() uint64 { return a.threshold }

// Live reports the current estimated live-byte count.
func (a *Arena) Live() uint64 { return a.live }

// AddRoot registers a long-lived root (typically the global frame and the
// call stack) that every sweep walks.
func (a *Arena) AddRoot(r Root) { a.roots = append(a.roots, r) }

// OnFree installs a hook invoked for every value the sweep reclaims, before
// value.Free runs on it and it is dropped from the allocated set. Nothing
// in this module installs one: a class's __expire runs through value.Free,
// which Collect calls for every reclaimed value.
func (a *Arena) OnFree(fn func(v *value.Value)) { a.onFree = fn }

// Register adopts v into the arena (the tail end of every gc_new_<kind>
// factory in spec.md §3 "Lifecycles"): v starts at refcount 0, the first
// binding increments it. Idempotent by pointer identity — a value handed
// back out of a dispatch call (e.g. a class operator returning an
// already-registered instance, or `me` itself) may legitimately pass
// through a call site that always registers its result; re-registering an
// already-adopted pointer must not inflate the live-byte counter a second
// time.
func (a *Arena) Register(v *value.Value) *value.Value {
	if _, already := a.allocated[v]; already {
		return v
	}
	a.allocated[v] = struct{}{}
	a.live += roughValueSize
	return v
}

// MaybeCollect triggers a sweep if the live-byte counter has crossed the
// threshold. Callers invoke this only at a safe point (spec.md §4.B:
// "statement boundaries in the top-level body, and function/method return
// boundaries" — internal/eval calls this, never mid-expression).
func (a *Arena) MaybeCollect() {
	if a.threshold == 0 || a.live < a.threshold {
		return
	}
	a.Collect()
}

// Pool pins v so it survives the next sweep regardless of refcount — used
// by native calls and by the evaluator around operations that could
// otherwise release an in-flight value (spec.md §4.B "pool(v)/depool()").
func (a *Arena) Pool(v *value.Value) Pin {
	p := Pin{id: uuid.New(), value: v}
	a.pins[p.id] = v
	return p
}

// Depool releases a pin acquired by Pool.
func (a *Arena) Depool(p Pin) { delete(a.pins, p.id) }

// Collect runs the mark-sweep pass described in spec.md §4.B: mark every
// value reachable from the registered roots, the pin table, and every
// extern-owned value; free everything else whose refcount has also
// reached zero. Values with refcount>0 but unmarked are left alone this
// cycle — they will be caught once their holder releases them.
func (a *Arena) Collect() {
	for v := range a.allocated {
		v.Marked = false
	}

	var mark func(v *value.Value)
	visited := make(map[*value.Value]struct{})
	mark = func(v *value.Value) {
		if v == nil {
			return
		}
		if _, ok := visited[v]; ok {
			return
		}
		visited[v] = struct{}{}
		v.Marked = true
		for _, child := range value.Children(v) {
			mark(child)
		}
	}

	for _, r := range a.roots {
		for _, v := range r.GCRoots() {
			mark(v)
		}
	}
	for _, v := range a.pins {
		mark(v)
	}
	for v := range a.allocated {
		if v.ExternOwned {
			mark(v)
		}
	}

	for v := range a.allocated {
		if v.Marked || v.Refcount > 0 {
			continue
		}
		if a.onFree != nil {
			a.onFree(v)
		}
		value.Free(v)
		delete(a.allocated, v)
		if a.live >= roughValueSize {
			a.live -= roughValueSize
		} else {
			a.live = 0
		}
		a.freed++
	}
	a.swept++
}

// Stats is a debug/test snapshot of collector activity.
type Stats struct {
	Allocated int
	Freed     int
	Sweeps    int
	Live      uint64
}

// Stats reports cumulative collector activity, used by tests asserting
// spec.md §8's "after a GC sweep, no reachable value has been freed"
// property.
func (a *Arena) Stats() Stats {
	return Stats{Allocated: len(a.allocated), Freed: a.freed, Sweeps: a.swept, Live: a.live}
}
