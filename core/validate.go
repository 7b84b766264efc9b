package core

import (
	"fmt"
)

// ValidateOption configures Network.Validate.
type ValidateOption func(*validateOptions)

// validateOptions holds resolved validation settings.
type validateOptions struct {
	allowPartial bool // tolerate dangling input references
	maxPasses    int  // 0 means derive from subgraph size
}

// WithPartialGraph permits dangling graph fragments: input references
// to unregistered nodes are skipped instead of failing. Used for
// diagnostic sub-evaluation of incomplete networks.
func WithPartialGraph() ValidateOption {
	return func(o *validateOptions) { o.allowPartial = true }
}

// WithMaxPasses overrides the bounded number of shape-inference passes.
// Values < 1 are ignored. The default is 2·V+2 for a subgraph of V nodes.
func WithMaxPasses(n int) ValidateOption {
	return func(o *validateOptions) {
		if n >= 1 {
			o.maxPasses = n
		}
	}
}

// Reachable returns the nodes of the subgraph reachable from root in
// deterministic post-order (inputs before consumers, declared input
// order respected). Cyclic references are traversed once; legitimacy of
// cycles is the loops package's concern, not Reachable's.
//
// A dangling input reference fails with ErrNodeNotFound naming the
// missing node — this is what surfaces a DeleteNode edit to later
// order construction.
// Complexity: O(V + E)
func (net *Network) Reachable(root string) ([]Node, error) {
	return net.reachable(root, false)
}

// reachable implements Reachable with an allowPartial escape hatch used
// by Validate(WithPartialGraph()).
func (net *Network) reachable(root string, allowPartial bool) ([]Node, error) {
	rootNode, err := net.Node(root)
	if err != nil {
		return nil, fmt.Errorf("core: Reachable: %w", err)
	}

	var (
		order   []Node
		visited = make(map[string]struct{}, len(net.nodes))
		visit   func(n Node) error
	)
	visit = func(n Node) error {
		k := key(n.Name())
		if _, done := visited[k]; done {
			return nil
		}
		// Mark before recursing: cycles are traversed exactly once.
		visited[k] = struct{}{}
		for _, in := range n.InputNames() {
			child, lookupErr := net.Node(in)
			if lookupErr != nil {
				if allowPartial {
					continue
				}

				return fmt.Errorf("core: Reachable: input %q of %q: %w", in, n.Name(), ErrNodeNotFound)
			}
			if err = visit(child); err != nil {
				return err
			}
		}
		order = append(order, n)

		return nil
	}

	if err = visit(rootNode); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate performs repeated shape-inference passes over the subgraph
// reachable from root until no node's shape changes (fixpoint), within
// a bounded number of passes.
//
// Each pass asks every Shaper node to infer its output shape from its
// inputs' current shapes; nodes without the Shaper capability keep
// their declared shape. Inference errors are tolerated while shapes are
// still propagating, but once a pass is a no-op — or the pass budget is
// exhausted — a remaining error or unresolved dimension fails with
// ErrShape naming the offending node.
//
// Side effect: node shapes are set as validation proceeds. Validate
// must run at least once before any execution order is used for
// evaluation.
// Complexity: O(P · (V + E)) for P passes.
func (net *Network) Validate(root string, opts ...ValidateOption) error {
	// 1. Resolve options.
	var o validateOptions
	for _, opt := range opts {
		opt(&o)
	}

	// 2. Materialize the subgraph once; membership does not change
	//    between passes.
	nodes, err := net.reachable(root, o.allowPartial)
	if err != nil {
		return fmt.Errorf("core: Validate: %w", err)
	}

	maxPasses := o.maxPasses
	if maxPasses == 0 {
		maxPasses = 2*len(nodes) + 2
	}

	// 3. Iterate to a fixpoint.
	for pass := 0; pass < maxPasses; pass++ {
		changed, failedNode, inferErr := net.validatePass(nodes, o.allowPartial)
		if changed {
			continue
		}
		// Fixpoint reached: any surviving inference error is final.
		if inferErr != nil {
			return fmt.Errorf("core: Validate: node %q: %w", failedNode, ErrShape)
		}

		return nil
	}

	return fmt.Errorf("core: Validate: no fixpoint after %d passes rooted at %q: %w", maxPasses, root, ErrShape)
}

// validatePass runs one shape-inference sweep. It reports whether any
// shape changed, and the first node whose inference failed (kept so the
// caller can name the offender once the iteration settles).
func (net *Network) validatePass(nodes []Node, allowPartial bool) (changed bool, failedNode string, inferErr error) {
	for _, n := range nodes {
		shaper, ok := n.(Shaper)
		if !ok {
			// Declared-shape node: nothing to infer, but an unresolved
			// declaration is an error at fixpoint.
			if !n.Shape().Resolved() && inferErr == nil {
				failedNode, inferErr = n.Name(), ErrShape
			}
			continue
		}

		inShapes, missing := net.inputShapes(n, allowPartial)
		if missing && inferErr == nil {
			failedNode, inferErr = n.Name(), ErrShape
			continue
		}

		s, err := shaper.InferShape(inShapes)
		if err != nil {
			if inferErr == nil {
				failedNode, inferErr = n.Name(), err
			}
			continue
		}
		if s != n.Shape() {
			n.SetShape(s)
			changed = true
		}
		// Inference that settles on an unresolved row dimension is as
		// final as a failed declaration once the sweep is a no-op.
		if !n.Shape().Resolved() && inferErr == nil {
			failedNode, inferErr = n.Name(), ErrShape
		}
	}

	return changed, failedNode, inferErr
}

// inputShapes gathers the current shapes of n's inputs in declared
// order. missing reports an unresolvable reference under !allowPartial
// (the caller treats it as a pending failure rather than aborting the
// sweep, so other nodes still make progress this pass).
func (net *Network) inputShapes(n Node, allowPartial bool) (shapes []Shape, missing bool) {
	inputs := n.InputNames()
	shapes = make([]Shape, 0, len(inputs))
	for _, in := range inputs {
		child, err := net.Node(in)
		if err != nil {
			if allowPartial {
				shapes = append(shapes, Shape{})
				continue
			}

			return shapes, true
		}
		shapes = append(shapes, child.Shape())
	}

	return shapes, false
}
