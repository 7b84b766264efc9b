// Package compnet is an in-memory dependency-graph scheduler for
// computation networks — directed graphs of computation nodes that may
// contain recurrent (cyclic) connections closed through time-shifted
// edges.
//
// 🚀 What is compnet?
//
//	A deterministic, single-threaded scheduling core that brings together:
//		• Core primitives: a name-scoped node registry, node groups,
//		  graph edits and bounded shape validation
//		• Loop detection: Tarjan strongly-connected components with
//		  stepping-direction inference for recurrent loops
//		• Order construction: cached linear execution orders (forward
//		  and gradient) alternating whole-batch and step-by-step units
//		• Execution driving: ForwardProp / Backprop walks with
//		  skip-recompute timestamps
//		• Buffer pooling: reference-counted reuse of intermediate
//		  result buffers, lifetimes derived from the computed order
//
// ✨ Why choose compnet?
//
//   - Deterministic – identical graphs always yield identical loop ids
//     and execution orders
//   - Strict caching – every graph edit invalidates derived orders;
//     a stale order is never returned
//   - Pure Go – no cgo, no hidden deps
//   - Narrow interfaces – numeric kernels, serialization and training
//     loops stay external collaborators
//
// Under the hood, everything is organized under seven subpackages:
//
//	core/    — Node capability set, Network registry, groups, edits, validation
//	loops/   — strongly-connected-component loop detection & direction inference
//	order/   — memoized forward/gradient order construction
//	exec/    — forward/backward execution driver (PAR and SEQ traversal)
//	pool/    — reusable buffer pool + order-derived release plans
//	builder/ — deterministic fluent construction of network fixtures
//	dump/    — diagnostic exports: edge list, adjacency matrix, Graphviz DOT
//
// Quick ASCII example:
//
//	features ──► W·x ──► σ ──► criterion
//	              ▲      │
//	              └─delay┘        (a recurrent loop, stepped through time)
//
// Dive into each package's doc.go for contracts, complexity notes and
// runnable examples.
//
//	go get github.com/katalvlaran/compnet
package compnet
