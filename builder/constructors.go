// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// constructors.go — Constructor implementations behind the api.go
// declarations. Every closure validates early, registers nodes in a
// stable order, and wraps failures in ErrConstruct.

package builder

import (
	"fmt"

	"github.com/katalvlaran/compnet/core"
)

// timeShiftNode is the feedback edge of a Recurrence: a structural
// node whose only capability beyond core.Base is the time offset that
// loop detection reads.
type timeShiftNode struct {
	*core.Base
	offset int
}

// TimeOffset reports the cross-step displacement: negative looks back,
// positive looks ahead.
func (n *timeShiftNode) TimeOffset() int { return n.offset }

// Input adds a feature leaf with a batch-dependent column count and
// files it in the features group.
func Input(name string, rows int) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		n := core.NewBase(name, OpInput, core.WithShape(cfg.rowsOr(rows), 0))
		if err := net.AddNode(n); err != nil {
			return fmt.Errorf("Input %q: %w: %w", name, ErrConstruct, err)
		}

		return net.AddToGroup(core.GroupFeatures, name)
	}
}

// Parameter adds a learnable leaf with both dimensions declared and
// the needs-gradient flag set.
func Parameter(name string, rows, cols int) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		if cols <= 0 {
			return fmt.Errorf("Parameter %q: cols must be positive: %w", name, ErrConstruct)
		}
		n := core.NewBase(name, OpParameter,
			core.WithShape(cfg.rowsOr(rows), cols), core.WithNeedsGradient())
		if err := net.AddNode(n); err != nil {
			return fmt.Errorf("Parameter %q: %w: %w", name, ErrConstruct, err)
		}

		return nil
	}
}

// Unary adds name = op(input). The input must already be registered.
func Unary(name, op, input string) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		return addInterior(net, cfg, name, op, input)
	}
}

// Binary adds name = op(a, b). Both inputs must already be registered.
func Binary(name, op, a, b string) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		return addInterior(net, cfg, name, op, a, b)
	}
}

// Chain stacks n nodes prefix1…prefixN, each consuming the previous,
// the first consuming input.
func Chain(prefix, op string, n int, input string) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		if n < 1 {
			return fmt.Errorf("Chain %q: need at least one node, got %d: %w", prefix, n, ErrConstruct)
		}
		prev := input
		for i := 1; i <= n; i++ {
			name := fmt.Sprintf("%s%d", prefix, i)
			if err := addInterior(net, cfg, name, op, prev); err != nil {
				return err
			}
			prev = name
		}

		return nil
	}
}

// Recurrence adds name = op(input, through) and closes the loop with
// the time-shifted feedback node through = shift(name, offset).
// Registration order: name first (with its edges), then through, so a
// failure never leaves a dangling shift node behind.
func Recurrence(name, op, input, through string, offset int) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		if offset == 0 {
			return fmt.Errorf("Recurrence %q: zero time offset closes no loop: %w", name, ErrConstruct)
		}
		if err := addInterior(net, cfg, name, op, input, through); err != nil {
			return err
		}

		shiftOp := OpPastValue
		if offset > 0 {
			shiftOp = OpFutureValue
		}
		shift := &timeShiftNode{
			Base: core.NewBase(through, shiftOp,
				core.WithShape(cfg.rows, 0), core.WithInputs(name), gradOpt(cfg)),
			offset: offset,
		}
		if err := net.AddNode(shift); err != nil {
			return fmt.Errorf("Recurrence %q: %w: %w", name, ErrConstruct, err)
		}

		return nil
	}
}

// InGroup files already-registered nodes into group g.
func InGroup(g core.Group, names ...string) Constructor {
	return func(net *core.Network, _ builderConfig) error {
		for _, name := range names {
			if err := net.AddToGroup(g, name); err != nil {
				return fmt.Errorf("InGroup %q: %w: %w", name, ErrConstruct, err)
			}
		}

		return nil
	}
}

// Criterion adds a unary reduction node and files it in the training
// criteria group.
func Criterion(name, op, input string) Constructor {
	return func(net *core.Network, cfg builderConfig) error {
		if err := addInterior(net, cfg, name, op, input); err != nil {
			return err
		}

		return net.AddToGroup(core.GroupCriteria, name)
	}
}

// addInterior registers one interior node with the configured default
// shape and gradient policy. Interior shapes stay batch-dependent;
// validation refines them later.
func addInterior(net *core.Network, cfg builderConfig, name, op string, inputs ...string) error {
	n := core.NewBase(name, op,
		core.WithShape(cfg.rows, 0), core.WithInputs(inputs...), gradOpt(cfg))
	if err := net.AddNode(n); err != nil {
		return fmt.Errorf("%s %q: %w: %w", op, name, ErrConstruct, err)
	}

	return nil
}

// gradOpt translates the config flag into a node option.
func gradOpt(cfg builderConfig) core.NodeOption {
	if cfg.needsGradient {
		return core.WithNeedsGradient()
	}

	return func(*core.Base) {} // no-op
}
