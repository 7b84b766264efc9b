// Package loops defines the Loop and Result types plus sentinel errors
// for strongly-connected-component loop detection. The algorithm lives
// in detect.go.
package loops

import (
	"errors"
	"strings"
)

// ErrCyclicDependency indicates a cycle with no legitimate time offset:
// a zero-delay self-reference, a component without any cross-time-step
// member, or conflicting implied stepping directions.
var ErrCyclicDependency = errors.New("loops: cyclic dependency without a valid time offset")

// Direction is the stepping direction of a loop across the time
// dimension.
type Direction int

const (
	// Forward processes step 0 before step T−1 (recurrence over past
	// values; the usual case for delay edges with negative offsets).
	Forward Direction = 1

	// Backward processes step T−1 before step 0 (recurrence over future
	// values; positive offsets).
	Backward Direction = -1
)

// String implements fmt.Stringer for diagnostics.
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}

	return "forward"
}

// Loop is one strongly connected component evaluated step-by-step
// across the time dimension.
type Loop struct {
	// ID identifies the loop; ids are assigned in deterministic
	// component-closing order starting at 0.
	ID int

	// Nodes lists the member names in loop-internal evaluation order
	// (time-shifting members first, then their consumers).
	Nodes []string

	// Source names the representative cross-time-step member — the node
	// whose output at step t is consumed at step t±1.
	Source string

	// Dir is the stepping direction derived from the Source offset sign.
	Dir Direction
}

// Contains reports whether the (case-insensitive) name is a member.
func (l *Loop) Contains(name string) bool {
	lower := strings.ToLower(name)
	for _, n := range l.Nodes {
		if strings.ToLower(n) == lower {
			return true
		}
	}

	return false
}

// Result is the outcome of one Detect call: all loops of the subgraph,
// disjoint by construction (a node belongs to at most one component).
type Result struct {
	// Loops in deterministic id order.
	Loops []*Loop

	// byNode maps lowercased member names to indices into Loops.
	byNode map[string]int
}

// LoopOf returns the loop containing name, if any.
func (r *Result) LoopOf(name string) (*Loop, bool) {
	idx, ok := r.byNode[strings.ToLower(name)]
	if !ok {
		return nil, false
	}

	return r.Loops[idx], true
}
