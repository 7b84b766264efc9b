// Package exec drives the evaluation of a computation network: it
// walks the cached execution order for a root, invoking each node's
// forward or backward hook and moving result buffers through the pool
// according to the order-derived reference plan.
//
// Two traversal modes exist, mirroring the two unit kinds of an order:
//
//   - PAR (whole-batch): a single node's hook is invoked once with a
//     whole-batch FrameRange, computing all parallel sequences and
//     time steps simultaneously.
//   - SEQ (step-by-step): a loop unit's member hooks are invoked once
//     per discrete time step, in the loop's stepping direction, so the
//     chain inside the loop can read the neighboring step's buffers.
//     Backprop steps loops in the reverse of their forward direction.
//
// Nodes participate through narrow capabilities: Forwarder and
// Backpropper. A node lacking a capability (feature inputs, learnable
// parameters) is passed over for that phase but still takes part in
// buffer-lifetime bookkeeping.
//
// Skip-recompute: a node whose evaluation stamp is newer than all of
// its inputs' stamps skips its forward hook, provided its output
// buffer from the previous pass is still bound (a recycled buffer
// forces recomputation). Touch marks nodes (such as freshly loaded
// features) as modified so consumers recompute.
//
// Failure semantics: any hook error is fatal to the current call and
// is returned wrapped with the offending node's name. Buffers already
// moved remain in the pool in a non-corrupting state: subsequent
// requests either reuse released buffers or allocate fresh, never a
// buffer still referenced elsewhere.
//
// The driver is strictly single-threaded and synchronous; there is no
// cancellation mid-traversal and no internal locking.
package exec
