// Package pool manages the reusable intermediate-result buffers of a
// computation network evaluation.
//
// Two pieces cooperate:
//
//   - Pool — a free list of dense buffers keyed by exact shape.
//     Request returns a free compatible buffer when one exists and
//     allocates fresh otherwise: exhaustion is never an error. Release
//     returns a buffer to the free list for reuse by a later,
//     unrelated node.
//
//   - Plan — pending-reference counts derived once from an execution
//     order, before any buffer changes hands. refs counts the
//     not-yet-executed consumers of each node's output; gradRefs the
//     pending contributors to (plus the final reader of) each node's
//     gradient. Deriving the counts up front from the order structure
//     is what rules out double-counting and premature release.
//
// The execution driver requests output buffers before computing a
// unit, then consumes one reference per input edge after each node
// executes; a buffer whose count reaches zero goes back to the free
// list. The same discipline runs in reverse for gradient buffers.
//
// Invariant: a buffer is never owned by two live consumers — releases
// happen only when the plan accounts a count down to zero, and the
// free list never hands out a buffer that was not released.
//
// Complexity:
//
//   - Request/Release: O(1) amortized.
//   - BuildPlan:       O(V + E) over the order.
package pool
