package loops

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/compnet/core"
)

// sccState carries the Tarjan traversal bookkeeping for one Detect call.
type sccState struct {
	net     *core.Network
	index   map[string]int // discovery index per lowercased name
	lowlink map[string]int // low-link value per lowercased name
	onStack map[string]bool
	stack   []core.Node // component stack (pushed in discovery order)
	counter int         // next discovery index
	loops   []*Loop     // closed components classified as loops
	byNode  map[string]int
}

// Detect computes the strongly connected components of the input graph
// restricted to nodes reachable from root, classifying each as a Loop
// per the package rules. Results are deterministic for an unchanged
// network: discovery follows declared input order from root.
func Detect(net *core.Network, root string) (*Result, error) {
	rootNode, err := net.Node(root)
	if err != nil {
		return nil, fmt.Errorf("loops: Detect: %w", err)
	}

	st := &sccState{
		net:     net,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
		byNode:  make(map[string]int),
	}
	if err = st.strongConnect(rootNode); err != nil {
		return nil, err
	}

	return &Result{Loops: st.loops, byNode: st.byNode}, nil
}

// strongConnect is the Tarjan recursion: assign discovery index and
// low-link, push onto the component stack, recurse into inputs in
// declared order, and close a component when lowlink == index.
func (st *sccState) strongConnect(n core.Node) error {
	k := strings.ToLower(n.Name())

	// 1. Open: discovery index, provisional low-link, stack push.
	st.index[k] = st.counter
	st.lowlink[k] = st.counter
	st.counter++
	st.stack = append(st.stack, n)
	st.onStack[k] = true

	// 2. Recurse into inputs in declared order (determinism).
	for _, in := range n.InputNames() {
		child, err := st.net.Node(in)
		if err != nil {
			return fmt.Errorf("loops: Detect: input %q of %q: %w", in, n.Name(), core.ErrNodeNotFound)
		}
		ck := strings.ToLower(child.Name())
		if _, seen := st.index[ck]; !seen {
			if err = st.strongConnect(child); err != nil {
				return err
			}
			if st.lowlink[ck] < st.lowlink[k] {
				st.lowlink[k] = st.lowlink[ck]
			}
		} else if st.onStack[ck] && st.index[ck] < st.lowlink[k] {
			st.lowlink[k] = st.index[ck]
		}
	}

	// 3. Close: this node roots a component — pop everything pushed
	//    since it was opened.
	if st.lowlink[k] == st.index[k] {
		var members []core.Node
		for {
			top := st.stack[len(st.stack)-1]
			st.stack = st.stack[:len(st.stack)-1]
			tk := strings.ToLower(top.Name())
			st.onStack[tk] = false
			members = append(members, top)
			if tk == k {
				break
			}
		}

		return st.classify(members)
	}

	return nil
}

// classify turns a closed component into a Loop (or rejects it).
// members arrive in reverse discovery order; they are flipped back so
// loop internals stay deterministic.
func (st *sccState) classify(members []core.Node) error {
	// 1. Restore discovery order.
	for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
		members[i], members[j] = members[j], members[i]
	}

	// 2. Size-one components only loop through an explicit self-edge.
	if len(members) == 1 {
		n := members[0]
		if !hasSelfEdge(n) {
			return nil
		}
		if offsetOf(n) == 0 {
			return fmt.Errorf("loops: node %q depends on itself with no time offset: %w", n.Name(), ErrCyclicDependency)
		}
	}

	// 3. Derive the stepping direction from the time-shifting members.
	source, dir, err := directionOf(members)
	if err != nil {
		return err
	}

	// 4. Order members for step-by-step evaluation and record the loop.
	loop := &Loop{
		ID:     len(st.loops),
		Nodes:  internalOrder(members),
		Source: source,
		Dir:    dir,
	}
	idx := len(st.loops)
	st.loops = append(st.loops, loop)
	for _, m := range members {
		st.byNode[strings.ToLower(m.Name())] = idx
	}

	return nil
}

// directionOf inspects the component's TimeShifter members. Exactly one
// offset sign must be implied; zero offsets and sign conflicts are
// design errors, as is a multi-node component with no shifter at all.
func directionOf(members []core.Node) (source string, dir Direction, err error) {
	var sign int
	for _, m := range members {
		ts, ok := m.(core.TimeShifter)
		if !ok {
			continue
		}
		off := ts.TimeOffset()
		if off == 0 {
			return "", 0, fmt.Errorf("loops: node %q carries a zero time offset inside a cycle: %w", m.Name(), ErrCyclicDependency)
		}
		s := 1
		if off < 0 {
			s = -1
		}
		if sign != 0 && s != sign {
			return "", 0, fmt.Errorf("loops: node %q implies a conflicting stepping direction: %w", m.Name(), ErrCyclicDependency)
		}
		if sign == 0 {
			sign = s
			source = m.Name()
		}
	}
	if sign == 0 {
		return "", 0, fmt.Errorf("loops: cycle through %q has no cross-time-step member: %w", members[0].Name(), ErrCyclicDependency)
	}

	// Negative offsets consume past values: step forward through time.
	if sign < 0 {
		return source, Forward, nil
	}

	return source, Backward, nil
}

// internalOrder produces the per-step evaluation order of the component:
// a DFS post-order over members that does not traverse into
// time-shifting members, whose intra-loop inputs arrive from the
// neighboring step.
func internalOrder(members []core.Node) []string {
	inComponent := make(map[string]core.Node, len(members))
	for _, m := range members {
		inComponent[strings.ToLower(m.Name())] = m
	}

	var (
		order   []string
		visited = make(map[string]bool, len(members))
		visit   func(n core.Node)
	)
	visit = func(n core.Node) {
		k := strings.ToLower(n.Name())
		if visited[k] {
			return
		}
		visited[k] = true
		// Time shifters read the previous (or next) step: their inputs
		// impose no intra-step ordering.
		if _, shifts := n.(core.TimeShifter); !shifts {
			for _, in := range n.InputNames() {
				if child, ok := inComponent[strings.ToLower(in)]; ok {
					visit(child)
				}
			}
		}
		order = append(order, n.Name())
	}

	for _, m := range members {
		visit(m)
	}

	return order
}

// hasSelfEdge reports whether n lists itself among its inputs.
func hasSelfEdge(n core.Node) bool {
	k := strings.ToLower(n.Name())
	for _, in := range n.InputNames() {
		if strings.ToLower(in) == k {
			return true
		}
	}

	return false
}

// offsetOf returns the node's time offset, 0 when it is not a shifter.
func offsetOf(n core.Node) int {
	if ts, ok := n.(core.TimeShifter); ok {
		return ts.TimeOffset()
	}

	return 0
}
