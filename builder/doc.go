// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// Package builder assembles computation networks declaratively from
// small composable constructors. It exists so tests, examples, and
// benchmarks can state a topology in a handful of lines instead of
// hand-registering every node and edge.
//
// Design contract (strict):
//   - One orchestrator: Build(opts, cons...). Creates the Network,
//     resolves the configuration, runs constructors in order.
//   - All public factories are declared in api.go and return
//     Constructor closures (single place to read docs).
//   - Functional options (Option) resolve into an immutable
//     builderConfig; no global state.
//   - Determinism: the same options and constructor order produce an
//     identical network.
//   - Safety: never panic; constructors return sentinel errors, with
//     ErrConstruct as the package-level umbrella.
//
// What this package builds
//
//   - Input / Parameter — leaf nodes, registered into the features
//     group (inputs) or flagged for gradients (parameters).
//   - Unary / Binary — interior nodes over existing inputs.
//   - Chain — a linear stack of n same-operation nodes.
//   - Recurrence — a node plus its time-shifted feedback edge, the
//     canonical delay-closed loop.
//   - InGroup / Criterion — group bookkeeping.
//
// Nodes created here are structural: they carry names, operations,
// shapes and edges, but no numeric hooks. Execution tests attach
// their own hook-bearing node types directly.
package builder
