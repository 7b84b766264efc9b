// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// api.go — thin public entry-points for the builder package.
//
// Design contract (strict):
//   - One orchestrator: Build(opts, cons...). Creates the Network, resolves cfg, runs cons in order.
//   - All public factories are declared here, implemented in constructors.go (single place to read docs).
//   - Functional options (Option) resolve into an immutable builderConfig (no global state).
//   - Determinism: same options and constructor order ⇒ identical networks.
//   - Safety: never panic; return sentinel errors from constructors.

package builder

import (
	"fmt"

	"github.com/katalvlaran/compnet/core"
)

// Constructor applies one deterministic network mutation using the
// resolved builderConfig. Constructors MUST:
//   - Validate parameters early and return sentinel errors (no panics).
//   - Register nodes and edges in a stable, documented order.
//   - Preserve determinism for the same config and call order.
type Constructor func(net *core.Network, cfg builderConfig) error

// Build creates a new core.Network, resolves the builder configuration
// from opts, and applies all constructors in order. Any constructor
// error is wrapped with the context "Build: %w" and returned
// immediately; no partial cleanup is attempted.
//
// Complexity:
//   - Resolving options: O(len(opts)) time, O(1) space.
//   - Applying K constructors: Σ cost of each constructor; wrapper overhead O(K).
//
// Errors:
//   - Wraps constructor errors via %w; callers branch with
//     errors.Is(err, ErrConstruct) or against the core sentinels.
func Build(opts []Option, cons ...Constructor) (*core.Network, error) {
	net := core.NewNetwork()
	cfg := newBuilderConfig(opts...)

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("Build: nil constructor at index %d: %w", i, ErrConstruct)
		}
		if err := fn(net, cfg); err != nil {
			return nil, fmt.Errorf("Build: %w", err)
		}
	}

	return net, nil
}

// Extend resolves opts and applies constructors to an existing network,
// so fixtures can grow incrementally between assertions. It returns
// sentinel errors; it never panics.
func Extend(net *core.Network, opts []Option, cons ...Constructor) error {
	if net == nil {
		return fmt.Errorf("Extend: nil network: %w", ErrConstruct)
	}
	cfg := newBuilderConfig(opts...)

	for i, fn := range cons {
		if fn == nil {
			return fmt.Errorf("Extend: nil constructor at index %d: %w", i, ErrConstruct)
		}
		if err := fn(net, cfg); err != nil {
			return fmt.Errorf("Extend: %w", err)
		}
	}

	return nil
}

// =============================================================================
// Factories (declarations) — implemented in constructors.go
// =============================================================================
//
// Each factory returns a Constructor closure. The closure MUST:
//   - Register nodes before wiring edges that reference them.
//   - Emit names in a stable, documented order.
//   - Return only wrapped sentinel errors; NEVER panic at runtime.

// Input adds a feature leaf (rows × batch) and files it in the
// features group. rows ≤ 0 falls back to the configured default.
// Complexity: O(1).
//func Input(name string, rows int) Constructor

// Parameter adds a learnable leaf with a fully declared shape and the
// needs-gradient flag set. Complexity: O(1).
//func Parameter(name string, rows, cols int) Constructor

// Unary adds one interior node over a single existing input.
// Complexity: O(1).
//func Unary(name, op, input string) Constructor

// Binary adds one interior node over two existing inputs.
// Complexity: O(1).
//func Binary(name, op, a, b string) Constructor

// Chain stacks n same-operation nodes prefix1…prefixN, each feeding
// the next, rooted at input. Complexity: O(n).
//func Chain(prefix, op string, n int, input string) Constructor

// Recurrence adds node name = op(input, through) and the time-shifted
// node through = shift(name, offset), closing the loop. offset < 0
// looks back (PastValue), offset > 0 looks ahead (FutureValue).
// Complexity: O(1).
//func Recurrence(name, op, input, through string, offset int) Constructor

// InGroup files already-registered nodes into group g.
// Complexity: O(len(names)).
//func InGroup(g core.Group, names ...string) Constructor

// Criterion adds a unary reduction node and files it in the training
// criteria group. Complexity: O(1).
//func Criterion(name, op, input string) Constructor
