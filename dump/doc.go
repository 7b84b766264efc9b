// Package dump offers diagnostic exports of a computation network.
//
// The dump package provides:
//
//   - Lightweight converters (ToEdgeList, ToMatrix) for exporting the
//     dependency structure to linear-algebra routines or external
//     tooling.
//   - ToDOT for Graphviz rendering, with loop members highlighted and
//     time-shifted edges drawn dashed.
//   - Describe for a stable, human-readable node listing used in logs
//     and golden tests.
//
// All exports walk the registry in sorted name order, so equal
// networks produce byte-identical output.
package dump
