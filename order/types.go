// Package order defines the Unit and Order types produced by the
// Builder in builder.go.
package order

import (
	"github.com/katalvlaran/compnet/core"
	"github.com/katalvlaran/compnet/loops"
)

// Unit is one execution step of an Order: exactly one of Node (a
// whole-batch PAR evaluation) or Loop (a step-by-step SEQ evaluation)
// is set.
type Unit struct {
	// Node is the single node of a PAR unit, nil for loop units.
	Node core.Node

	// Loop is the loop of a SEQ unit, nil for single-node units.
	Loop *loops.Loop
}

// IsLoop reports whether the unit is a step-by-step loop evaluation.
func (u Unit) IsLoop() bool { return u.Loop != nil }

// Order is the cached linear execution sequence for one root.
type Order struct {
	// Root is the root node's registered name.
	Root string

	// Units in execution sequence.
	Units []Unit

	// Loops is the loop-detection result the order was built against.
	Loops *loops.Result
}

// Names flattens the order into node names (loop members in their
// loop-internal order), primarily for diagnostics and tests.
func (o *Order) Names() []string {
	var out []string
	for _, u := range o.Units {
		if u.IsLoop() {
			out = append(out, u.Loop.Nodes...)
			continue
		}
		out = append(out, u.Node.Name())
	}

	return out
}

// Len returns the number of execution units.
func (o *Order) Len() int { return len(o.Units) }
