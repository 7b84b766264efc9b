// Package loops detects recurrent loops in a computation network:
// the strongly connected components of the directed input graph
// restricted to nodes reachable from a chosen root.
//
// Detect runs a Tarjan index/low-link discovery over declared inputs in
// order, so component discovery — and therefore loop ids — is a
// deterministic function of the graph's declared wiring, never of map
// iteration or other algorithm internals. Repeated calls on an
// unchanged network yield identical results.
//
// Classification rules:
//
//   - A component of size one without a self-edge is not a loop.
//   - A component of size ≥ 2, or a single node with a time-shifted
//     self-edge, becomes a Loop.
//   - A cycle with no cross-time-step (TimeShifter) member, or with a
//     zero offset, has no legitimate time offset and fails with
//     ErrCyclicDependency naming the node.
//   - A component whose time-shifting members imply conflicting
//     stepping directions (mixed offset signs) also fails with
//     ErrCyclicDependency rather than guessing.
//
// The stepping direction of a loop derives from the sign of its
// cross-time-step offsets: negative offsets (consuming past steps)
// step Forward (t = 0 … T−1); positive offsets step Backward.
//
// Loop-internal evaluation order is a DFS over the component that does
// not traverse into time-shifting members — their intra-loop inputs
// arrive from the neighboring time step, which is exactly what breaks
// the cycle at evaluation time.
//
// Complexity:
//
//   - Time:   O(V + E) (Tarjan + per-component ordering)
//   - Memory: O(V)     (index/low-link maps and the component stack)
//
// Errors:
//
//   - ErrCyclicDependency   degenerate cycle (no/zero/conflicting offsets).
//   - core.ErrNodeNotFound  a reachable node references a missing input.
package loops
