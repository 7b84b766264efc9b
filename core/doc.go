// Package core provides the node model and name-scoped registry at the
// heart of compnet: computation nodes with ordered input references,
// declared shapes and evaluation timestamps, owned by a Network that
// supports graph edits, node groups and bounded shape validation.
//
// The Network N holds a case-insensitive name→Node registry:
//
//   - Nodes reference their inputs by name, not by pointer — the
//     registry is the single owner, so recurrent (cyclic) references
//     need no special teardown and a deleted node is discovered as
//     ErrNodeNotFound at the next traversal.
//   - Node groups (features, labels, criteria, evaluation, outputs,
//     pairs) tag registry members without implying exclusive ownership.
//   - Every mutating operation (AddNode, AttachInputs, DeleteNode,
//     RenameNode, ReplaceNode) bumps a monotonic version counter;
//     derived caches (loop sets, execution orders) key off this
//     counter, so a stale order can never be observed.
//   - Validate(root) runs repeated shape-inference passes over the
//     subgraph reachable from root until a fixpoint, within a bounded
//     pass budget.
//
// Why use core.Network?
//
//   - Single owner, explicit lifecycle — no process-wide node registry.
//   - Deterministic iteration — Nodes(), Group(), Reachable() return
//     stable, input-declaration-driven orderings.
//   - Narrow node contract — the scheduler needs only the Node
//     capability set; numeric behavior stays in the caller's types.
//
// Concurrency:
//
//	The Network performs no internal locking. Graph edits and
//	traversals are synchronous call/return operations; concurrent
//	writers must be serialized by the caller (single-writer
//	discipline).
//
// Errors:
//
//	ErrNilNode           - nil Node passed to a registry operation.
//	ErrEmptyNodeName     - node name is the empty string.
//	ErrDuplicateName     - an edit would insert a name already present.
//	ErrNodeNotFound      - lookup by name failed.
//	ErrRenameUnsupported - RenameNode hit a node without the rename
//	                       capability.
//	ErrShape             - validation could not reconcile dimensions
//	                       within the bounded pass limit.
//
// Complexity:
//
//   - Registry operations: O(1) amortized (map access).
//   - Reachable / Validate: O(V + E) per pass over the subgraph.
package core
