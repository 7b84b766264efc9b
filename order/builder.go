package order

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/compnet/core"
	"github.com/katalvlaran/compnet/loops"
)

// Builder memoizes execution orders and loop-detection results per
// root, keyed to one Network. All caches are dropped as soon as the
// network's version moves — invalidation is part of every lookup, never
// an afterthought.
//
// Builder performs no internal locking; see the core package's
// concurrency contract.
type Builder struct {
	net     *core.Network
	version uint64 // network version the caches were built against

	eval      map[string]*Order        // lowercased root → forward order
	grad      map[string]*Order        // lowercased root → gradient order
	loopCache map[string]*loops.Result // lowercased root → detection result
}

// NewBuilder creates a Builder bound to net with empty caches.
func NewBuilder(net *core.Network) *Builder {
	b := &Builder{net: net}
	b.InvalidateAll()

	return b
}

// InvalidateAll drops every cached order and loop result and
// re-snapshots the network version. Lookup paths call this implicitly
// on version mismatch; it is exported for callers that want an explicit
// cache clear.
func (b *Builder) InvalidateAll() {
	b.eval = make(map[string]*Order)
	b.grad = make(map[string]*Order)
	b.loopCache = make(map[string]*loops.Result)
	b.version = b.net.Version()
}

// ensureFresh enforces the strict invalidation contract: any graph edit
// since the caches were built empties them before the next answer.
func (b *Builder) ensureFresh() {
	if b.version != b.net.Version() {
		b.InvalidateAll()
	}
}

// Loops returns the memoized loop-detection result for root.
func (b *Builder) Loops(root string) (*loops.Result, error) {
	b.ensureFresh()

	k := strings.ToLower(root)
	if res, ok := b.loopCache[k]; ok {
		return res, nil
	}

	res, err := loops.Detect(b.net, root)
	if err != nil {
		return nil, err
	}
	b.loopCache[k] = res

	return res, nil
}

// EvaluationOrder returns the cached forward execution order for root,
// computing and inserting it on a miss. A hit returns the identical
// *Order built earlier (idempotence contract).
func (b *Builder) EvaluationOrder(root string) (*Order, error) {
	b.ensureFresh()

	k := strings.ToLower(root)
	if ord, ok := b.eval[k]; ok {
		return ord, nil
	}

	ord, err := b.build(root)
	if err != nil {
		return nil, err
	}
	b.eval[k] = ord

	return ord, nil
}

// GradientOrder returns the cached backward execution order for root:
// the reverse of the forward unit list. Loop units keep their member
// lists in forward order — the driver walks their time dimension in the
// opposite direction instead.
func (b *Builder) GradientOrder(root string) (*Order, error) {
	b.ensureFresh()

	k := strings.ToLower(root)
	if ord, ok := b.grad[k]; ok {
		return ord, nil
	}

	fwd, err := b.EvaluationOrder(root)
	if err != nil {
		return nil, err
	}

	units := make([]Unit, len(fwd.Units))
	for i, u := range fwd.Units {
		units[len(units)-1-i] = u
	}
	ord := &Order{Root: fwd.Root, Units: units, Loops: fwd.Loops}
	b.grad[k] = ord

	return ord, nil
}

// build computes the forward order: detect loops, collapse each to a
// single vertex, then DFS post-order from root visiting declared
// inputs before their consumers.
func (b *Builder) build(root string) (*Order, error) {
	rootNode, err := b.net.Node(root)
	if err != nil {
		return nil, fmt.Errorf("order: EvaluationOrder: %w", err)
	}

	detected, err := b.Loops(root)
	if err != nil {
		return nil, err
	}

	w := &walker{net: b.net, loops: detected, visited: make(map[string]bool)}
	if err = w.visit(rootNode); err != nil {
		return nil, err
	}

	return &Order{Root: rootNode.Name(), Units: w.units, Loops: detected}, nil
}

// walker carries the collapsed-graph traversal state for one build.
type walker struct {
	net     *core.Network
	loops   *loops.Result
	visited map[string]bool // lowercased names already placed
	units   []Unit
}

// visit places n (or its whole loop) after everything it depends on.
func (w *walker) visit(n core.Node) error {
	k := strings.ToLower(n.Name())
	if w.visited[k] {
		return nil
	}

	// Loop members are placed collectively: the loop is one collapsed
	// vertex whose dependencies are every member's external inputs.
	if l, in := w.loops.LoopOf(n.Name()); in {
		return w.visitLoop(l)
	}

	w.visited[k] = true
	for _, in := range n.InputNames() {
		child, err := w.net.Node(in)
		if err != nil {
			return fmt.Errorf("order: input %q of %q: %w", in, n.Name(), core.ErrNodeNotFound)
		}
		if err = w.visit(child); err != nil {
			return err
		}
	}
	w.units = append(w.units, Unit{Node: n})

	return nil
}

// visitLoop marks all members visited up front (edges inside the
// component impose no collapsed-graph ordering), recurses into every
// member's external inputs in deterministic member/input order, then
// emits the single SEQ unit.
func (w *walker) visitLoop(l *loops.Loop) error {
	for _, name := range l.Nodes {
		w.visited[strings.ToLower(name)] = true
	}

	for _, name := range l.Nodes {
		member, err := w.net.Node(name)
		if err != nil {
			return fmt.Errorf("order: loop member %q: %w", name, core.ErrNodeNotFound)
		}
		for _, in := range member.InputNames() {
			if l.Contains(in) {
				continue
			}
			child, err := w.net.Node(in)
			if err != nil {
				return fmt.Errorf("order: input %q of %q: %w", in, member.Name(), core.ErrNodeNotFound)
			}
			if err = w.visit(child); err != nil {
				return err
			}
		}
	}
	w.units = append(w.units, Unit{Loop: l})

	return nil
}
