// Package dump provides converters from core.Network to edge-list,
// matrix, Graphviz and plain-text representations.
package dump

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/compnet/core"
)

// EdgeListItem is a flat representation of a single dependency edge:
// FromID feeds ToID. TimeShifted marks edges consumed across time
// steps (the back edges that close recurrent loops).
type EdgeListItem struct {
	FromID, ToID string
	TimeShifted  bool
}

// ToEdgeList returns all dependency edges of net as a slice of
// EdgeListItem, consumers in sorted name order and their inputs in
// declared order. Dangling references are emitted as written, so a
// broken network dumps its defect instead of hiding it.
//
// Time Complexity: O(V log V + E)
func ToEdgeList(net *core.Network) []EdgeListItem {
	var out []EdgeListItem
	for _, n := range net.Nodes() {
		_, shifted := n.(core.TimeShifter)
		for _, in := range n.InputNames() {
			out = append(out, EdgeListItem{
				FromID:      in,
				ToID:        n.Name(),
				TimeShifted: shifted,
			})
		}
	}

	return out
}

// Matrix is a lightweight adjacency-matrix representation of the
// dependency structure.
//
// Index maps node name → matrix row/column index, following sorted
// name order. Data[i][j] reports whether node i feeds node j.
type Matrix struct {
	Index map[string]int
	Data  [][]bool
}

// ToMatrix constructs a Matrix from net. Dangling input references
// have no row and are skipped.
//
// Time Complexity: O(V log V + V² + E)
// Memory: O(V²)
func ToMatrix(net *core.Network) *Matrix {
	nodes := net.Nodes()
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.Name()] = i
	}

	data := make([][]bool, len(nodes))
	for i := range data {
		data[i] = make([]bool, len(nodes))
	}
	for j, n := range nodes {
		for _, in := range n.InputNames() {
			if i, ok := idx[canonical(net, in)]; ok {
				data[i][j] = true
			}
		}
	}

	return &Matrix{Index: idx, Data: data}
}

// ToDOT renders net as a Graphviz digraph. Gradient-bearing nodes are
// drawn as boxes, time-shifted back edges dashed; node labels carry
// the operation tag. Output is deterministic.
//
// Time Complexity: O(V log V + E)
func ToDOT(net *core.Network, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n  rankdir=BT;\n", name)

	nodes := net.Nodes()
	for _, n := range nodes {
		shape := "ellipse"
		if n.NeedsGradient() {
			shape = "box"
		}
		fmt.Fprintf(&b, "  %q [label=\"%s\\n%s\", shape=%s];\n", n.Name(), n.Name(), n.Operation(), shape)
	}
	for _, n := range nodes {
		style := ""
		if _, ok := n.(core.TimeShifter); ok {
			style = " [style=dashed]"
		}
		for _, in := range n.InputNames() {
			fmt.Fprintf(&b, "  %q -> %q%s;\n", canonical(net, in), n.Name(), style)
		}
	}
	b.WriteString("}\n")

	return b.String()
}

// Describe returns a stable one-line-per-node listing:
//
//	name = Op(inputs...) [rows x cols] grad
//
// suitable for logs and golden tests.
//
// Time Complexity: O(V log V + E)
func Describe(net *core.Network) string {
	var b strings.Builder
	for _, n := range net.Nodes() {
		s := n.Shape()
		fmt.Fprintf(&b, "%s = %s(%s) [%d x %d]", n.Name(), n.Operation(), strings.Join(n.InputNames(), ", "), s.Rows, s.Cols)
		if n.NeedsGradient() {
			b.WriteString(" grad")
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// canonical resolves a possibly differently-cased input reference to
// the registered spelling, falling back to the reference itself.
func canonical(net *core.Network, ref string) string {
	if n, err := net.Node(ref); err == nil {
		return n.Name()
	}

	return ref
}
