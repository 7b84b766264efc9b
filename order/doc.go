// Package order linearizes a computation network into cached execution
// orders rooted at any node.
//
// An Order is a list of execution units, each either a single node
// evaluated over the whole batch at once (PAR) or a detected loop
// evaluated step-by-step across the time dimension (SEQ). Construction
// collapses every loop to a single vertex and runs a depth-first
// post-order traversal from the root, visiting declared inputs before
// their consumers, which guarantees:
//
//   - topological validity for all acyclic edges;
//   - an edge entering a loop from outside places the external node
//     before the whole loop unit;
//   - an edge leaving a loop places the loop unit before its consumer.
//
// Caching & invalidation contract (strict):
//
//   - Orders are memoized per root. A cache hit returns the identical
//     *Order value — callers may rely on pointer identity to detect
//     rebuilds (the idempotence contract).
//   - The Builder snapshots Network.Version(); any graph edit bumps the
//     version, and the next lookup drops every cached order and loop
//     result before answering. A stale order is never returned.
//
// The gradient order is the reverse of the forward unit list; loop
// units keep their member lists in forward order because the execution
// driver reverses the time direction instead.
//
// Complexity:
//
//   - Miss:  O(V + E) (loop detection + collapsed traversal)
//   - Hit:   O(1)
//
// Errors:
//
//   - core.ErrNodeNotFound     unknown root or dangling input reference.
//   - loops.ErrCyclicDependency  via loop detection on degenerate cycles.
package order
