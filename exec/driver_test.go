package exec_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/compnet/core"
	"github.com/katalvlaran/compnet/exec"
	"github.com/katalvlaran/compnet/pool"
)

// constNode is a source node with a fixed value vector; it counts its
// hook invocations so skip-recompute behavior can be asserted.
type constNode struct {
	*core.Base
	vals  []float64
	calls int
}

func (n *constNode) ForwardProp(_ exec.FrameRange, out *pool.Buffer, _ []*pool.Buffer) error {
	n.calls++
	copy(out.Data, n.vals)

	return nil
}

// scaleNode multiplies its single input by a constant factor.
type scaleNode struct {
	*core.Base
	k     float64
	calls int
}

func (n *scaleNode) ForwardProp(_ exec.FrameRange, out *pool.Buffer, in []*pool.Buffer) error {
	n.calls++
	for i, v := range in[0].Data {
		out.Data[i] = n.k * v
	}

	return nil
}

func (n *scaleNode) BackpropTo(_ int, _ exec.FrameRange, grad, inGrad *pool.Buffer) error {
	for i, g := range grad.Data {
		inGrad.Data[i] += n.k * g
	}

	return nil
}

// sumNode adds its inputs elementwise; its gradient passes through
// unchanged to every input.
type sumNode struct {
	*core.Base
}

func (n *sumNode) ForwardProp(_ exec.FrameRange, out *pool.Buffer, in []*pool.Buffer) error {
	out.Zero()
	for _, b := range in {
		for i, v := range b.Data {
			out.Data[i] += v
		}
	}

	return nil
}

func (n *sumNode) BackpropTo(_ int, _ exec.FrameRange, grad, inGrad *pool.Buffer) error {
	for i, g := range grad.Data {
		inGrad.Data[i] += g
	}

	return nil
}

// stepDelay feeds its input back shifted one step into the past:
// out[t] = in[t-1], with zero initial state.
type stepDelay struct {
	*core.Base
}

func (n *stepDelay) TimeOffset() int { return -1 }

func (n *stepDelay) ForwardProp(fr exec.FrameRange, out *pool.Buffer, in []*pool.Buffer) error {
	t := fr.Index()
	if t == 0 {
		out.Data[0] = 0
	} else {
		out.Data[t] = in[0].Data[t-1]
	}

	return nil
}

// stepAdd adds its inputs at a single time step.
type stepAdd struct {
	*core.Base
}

func (n *stepAdd) ForwardProp(fr exec.FrameRange, out *pool.Buffer, in []*pool.Buffer) error {
	t := fr.Index()
	out.Data[t] = 0
	for _, b := range in {
		out.Data[t] += b.Data[t]
	}

	return nil
}

// traceNode records every hook invocation into a shared log, tagging
// each entry with the node name and frame.
type traceNode struct {
	*core.Base
	log *[]string
}

// traceShift is a traceNode that also closes a loop one step back.
type traceShift struct{ traceNode }

func (n *traceShift) TimeOffset() int { return -1 }

func (n *traceNode) ForwardProp(fr exec.FrameRange, _ *pool.Buffer, _ []*pool.Buffer) error {
	*n.log = append(*n.log, n.Name()+"@"+frameTag(fr))

	return nil
}

func (n *traceNode) BackpropTo(i int, fr exec.FrameRange, _, _ *pool.Buffer) error {
	if i == 0 {
		*n.log = append(*n.log, "bp:"+n.Name()+"@"+frameTag(fr))
	}

	return nil
}

func frameTag(fr exec.FrameRange) string {
	if fr.IsWholeBatch() {
		return "*"
	}

	return fmt.Sprintf("%d", fr.Index())
}

// failNode returns a fixed error from its forward hook.
type failNode struct {
	*core.Base
	err error
}

func (n *failNode) ForwardProp(_ exec.FrameRange, _ *pool.Buffer, _ []*pool.Buffer) error {
	return n.err
}

// chainNet builds x → s (scale 3) → y (sum of s and x), all 2×1.
func chainNet(t *testing.T) (*core.Network, *constNode, *scaleNode, *sumNode) {
	t.Helper()
	net := core.NewNetwork()

	x := &constNode{Base: core.NewBase("x", "Const", core.WithShape(2, 1)), vals: []float64{1, 2}}
	s := &scaleNode{Base: core.NewBase("s", "Scale", core.WithShape(2, 1), core.WithInputs("x"), core.WithNeedsGradient()), k: 3}
	y := &sumNode{Base: core.NewBase("y", "Plus", core.WithShape(2, 1), core.WithInputs("s", "x"))}

	require.NoError(t, net.AddNode(x))
	require.NoError(t, net.AddNode(s))
	require.NoError(t, net.AddNode(y))

	return net, x, s, y
}

// TestDriver_ForwardChain checks that a plain feed-forward chain
// produces the expected values in the root buffer.
func TestDriver_ForwardChain(t *testing.T) {
	net, _, _, _ := chainNet(t)
	drv := exec.New(net)

	require.NoError(t, drv.ForwardProp("y"))

	out, err := drv.Output("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 8}, out.Data) // 3·x + x
}

// TestDriver_SkipRecompute verifies that an unchanged subgraph is not
// re-evaluated, and that Touch forces downstream recomputation
// without touching the refreshed source itself.
func TestDriver_SkipRecompute(t *testing.T) {
	net, x, s, _ := chainNet(t)
	drv := exec.New(net)

	require.NoError(t, drv.ForwardProp("y"))
	require.NoError(t, drv.ForwardProp("y"))
	assert.Equal(t, 1, x.calls, "nothing changed between passes")
	assert.Equal(t, 1, s.calls)

	require.NoError(t, drv.Touch("x"))
	require.NoError(t, drv.ForwardProp("y"))
	assert.Equal(t, 1, x.calls, "x itself holds fresh data; only consumers rerun")
	assert.Equal(t, 2, s.calls)

	out, err := drv.Output("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 8}, out.Data)
}

// TestDriver_BufferRecycling checks the reference-count discipline on
// a chain: intermediate buffers are released after their last
// consumer and reused for later nodes, while the root and the source
// keep their bindings.
func TestDriver_BufferRecycling(t *testing.T) {
	net := core.NewNetwork()
	x := &constNode{Base: core.NewBase("x", "Const", core.WithShape(2, 1)), vals: []float64{1, 2}}
	require.NoError(t, net.AddNode(x))
	for i, name := range []string{"a", "b", "y"} {
		in := []string{"x", "a", "b"}[i]
		require.NoError(t, net.AddNode(&scaleNode{
			Base: core.NewBase(name, "Scale", core.WithShape(2, 1), core.WithInputs(in)),
			k:    2,
		}))
	}

	drv := exec.New(net)
	require.NoError(t, drv.ForwardProp("y"))

	out, err := drv.Output("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 16}, out.Data)

	// a and b were intermediates; their buffers went back to the pool.
	_, err = drv.Output("a")
	assert.ErrorIs(t, err, exec.ErrNoOutput)
	_, err = drv.Output("b")
	assert.ErrorIs(t, err, exec.ErrNoOutput)

	allocated, reused := drv.Pool().Stats()
	assert.Equal(t, 3, allocated, "x, a, b allocate fresh; y reuses a's buffer")
	assert.Equal(t, 1, reused)
	assert.Equal(t, 1, drv.Pool().FreeCount(), "b's buffer is the only one left free")
}

// TestDriver_LoopStepping drives a recurrence and asserts the hook
// schedule: the source feeds in whole-batch, the loop members run
// step by step in loop-internal order, the criterion follows last.
func TestDriver_LoopStepping(t *testing.T) {
	net := core.NewNetwork()
	var log []string

	x := &traceNode{Base: core.NewBase("x", "Const", core.WithShape(1, 0)), log: &log}
	d := &traceShift{traceNode{Base: core.NewBase("d", "PastValue", core.WithShape(1, 0), core.WithInputs("h")), log: &log}}
	h := &traceNode{Base: core.NewBase("h", "Plus", core.WithShape(1, 0), core.WithInputs("x", "d")), log: &log}
	crit := &traceNode{Base: core.NewBase("crit", "SumElements", core.WithShape(1, 0), core.WithInputs("h")), log: &log}
	for _, n := range []core.Node{x, d, h, crit} {
		require.NoError(t, net.AddNode(n))
	}

	drv := exec.New(net, exec.WithTimeSteps(3))
	require.NoError(t, drv.ForwardProp("crit"))

	assert.Equal(t, []string{
		"x@*",
		"d@0", "h@0",
		"d@1", "h@1",
		"d@2", "h@2",
		"crit@*",
	}, log)
}

// TestDriver_LoopValues computes h[t] = x[t] + h[t-1] over three steps
// and checks the running sum in the recurrence output.
func TestDriver_LoopValues(t *testing.T) {
	net := core.NewNetwork()

	x := &constNode{Base: core.NewBase("x", "Const", core.WithShape(1, 0)), vals: []float64{1, 1, 1}}
	d := &stepDelay{Base: core.NewBase("d", "PastValue", core.WithShape(1, 0), core.WithInputs("h"))}
	h := &stepAdd{Base: core.NewBase("h", "Plus", core.WithShape(1, 0), core.WithInputs("x", "d"))}
	crit := &sumNode{Base: core.NewBase("crit", "Copy", core.WithShape(1, 0), core.WithInputs("h"))}
	for _, n := range []core.Node{x, d, h, crit} {
		require.NoError(t, net.AddNode(n))
	}

	drv := exec.New(net, exec.WithTimeSteps(3), exec.WithBatchCols(3))
	require.NoError(t, drv.ForwardProp("crit"))

	out, err := drv.Output("crit")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, out.Data)
}

// TestDriver_Backprop checks gradient accumulation across a diamond:
// both branches contribute to the shared source, whose gradient
// buffer survives the pass while intermediate gradients are recycled.
func TestDriver_Backprop(t *testing.T) {
	net := core.NewNetwork()

	x := &constNode{Base: core.NewBase("x", "Const", core.WithShape(2, 1), core.WithNeedsGradient()), vals: []float64{1, 2}}
	s1 := &scaleNode{Base: core.NewBase("s1", "Scale", core.WithShape(2, 1), core.WithInputs("x")), k: 2}
	s2 := &scaleNode{Base: core.NewBase("s2", "Scale", core.WithShape(2, 1), core.WithInputs("x")), k: 3}
	y := &sumNode{Base: core.NewBase("y", "Plus", core.WithShape(2, 1), core.WithInputs("s1", "s2"))}
	for _, n := range []core.Node{x, s1, s2, y} {
		require.NoError(t, net.AddNode(n))
	}

	drv := exec.New(net)
	require.NoError(t, drv.ForwardProp("y"))
	require.NoError(t, drv.Backprop("y"))

	g, err := drv.Gradient("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5}, g.Data, "∂y/∂x = 2 + 3 per element")

	_, err = drv.Gradient("s1")
	assert.ErrorIs(t, err, exec.ErrNoOutput, "intermediate gradients are recycled")
	_, err = drv.Gradient("y")
	assert.ErrorIs(t, err, exec.ErrNoOutput)
}

// TestDriver_BackpropZeroesBetweenPasses runs two full passes and
// checks the accumulated gradient does not carry over.
func TestDriver_BackpropZeroesBetweenPasses(t *testing.T) {
	net := core.NewNetwork()
	x := &constNode{Base: core.NewBase("x", "Const", core.WithShape(2, 1), core.WithNeedsGradient()), vals: []float64{1, 2}}
	s := &scaleNode{Base: core.NewBase("s", "Scale", core.WithShape(2, 1), core.WithInputs("x")), k: 4}
	require.NoError(t, net.AddNode(x))
	require.NoError(t, net.AddNode(s))

	drv := exec.New(net)
	require.NoError(t, drv.ForwardProp("s"))
	require.NoError(t, drv.Backprop("s"))
	require.NoError(t, drv.Backprop("s"))

	g, err := drv.Gradient("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4}, g.Data, "re-zeroed, not doubled")
}

// TestDriver_BackpropLoopReversed asserts a recurrence is unrolled
// backwards in time during backprop, with members visited in reverse
// loop-internal order within each step.
func TestDriver_BackpropLoopReversed(t *testing.T) {
	net := core.NewNetwork()
	var log []string

	x := &traceNode{Base: core.NewBase("x", "Const", core.WithShape(1, 0)), log: &log}
	d := &traceShift{traceNode{Base: core.NewBase("d", "PastValue", core.WithShape(1, 0), core.WithInputs("h")), log: &log}}
	h := &traceNode{Base: core.NewBase("h", "Plus", core.WithShape(1, 0), core.WithInputs("x", "d")), log: &log}
	crit := &traceNode{Base: core.NewBase("crit", "SumElements", core.WithShape(1, 0), core.WithInputs("h")), log: &log}
	for _, n := range []core.Node{x, d, h, crit} {
		require.NoError(t, net.AddNode(n))
	}

	drv := exec.New(net, exec.WithTimeSteps(3))
	require.NoError(t, drv.ForwardProp("crit"))
	log = log[:0]
	require.NoError(t, drv.Backprop("crit"))

	assert.Equal(t, []string{
		"bp:crit@*",
		"bp:h@2", "bp:d@2",
		"bp:h@1", "bp:d@1",
		"bp:h@0", "bp:d@0",
	}, log)
}

// TestDriver_BackpropLoopReleasesGradients checks the release-at-zero
// discipline inside a SEQ unit: a loop member whose final gradient
// hold is spent by a later member's input edge still returns its
// buffer to the pool, while parameter gradients stay bound.
func TestDriver_BackpropLoopReleasesGradients(t *testing.T) {
	net := core.NewNetwork()
	var log []string

	x := &traceNode{Base: core.NewBase("x", "Const", core.WithShape(1, 0), core.WithNeedsGradient()), log: &log}
	d := &traceShift{traceNode{Base: core.NewBase("d", "PastValue", core.WithShape(1, 0), core.WithInputs("h")), log: &log}}
	h := &traceNode{Base: core.NewBase("h", "Plus", core.WithShape(1, 0), core.WithInputs("x", "d")), log: &log}
	crit := &traceNode{Base: core.NewBase("crit", "SumElements", core.WithShape(1, 0), core.WithInputs("h")), log: &log}
	for _, n := range []core.Node{x, d, h, crit} {
		require.NoError(t, net.AddNode(n))
	}

	drv := exec.New(net, exec.WithTimeSteps(3))
	require.NoError(t, drv.ForwardProp("crit"))
	require.NoError(t, drv.Backprop("crit"))

	// h's last hold is consumed by d's input edge, d's by its own step.
	_, err := drv.Gradient("h")
	assert.ErrorIs(t, err, exec.ErrNoOutput)
	_, err = drv.Gradient("d")
	assert.ErrorIs(t, err, exec.ErrNoOutput)
	_, err = drv.Gradient("crit")
	assert.ErrorIs(t, err, exec.ErrNoOutput)

	g, err := drv.Gradient("x")
	require.NoError(t, err, "parameter gradients survive the pass")
	assert.NotNil(t, g)
}

// TestDriver_HookErrorSurfaces checks that an error from a node hook
// aborts the pass and names the failing node.
func TestDriver_HookErrorSurfaces(t *testing.T) {
	net := core.NewNetwork()
	boom := errors.New("singular matrix")

	x := &constNode{Base: core.NewBase("x", "Const", core.WithShape(1, 1)), vals: []float64{1}}
	f := &failNode{Base: core.NewBase("f", "Inverse", core.WithShape(1, 1), core.WithInputs("x")), err: boom}
	require.NoError(t, net.AddNode(x))
	require.NoError(t, net.AddNode(f))

	drv := exec.New(net)
	err := drv.ForwardProp("f")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"f"`)
}

// TestDriver_GraphEditRefreshesOrder edits the network between passes
// and expects the driver to pick up the new structure transparently.
func TestDriver_GraphEditRefreshesOrder(t *testing.T) {
	net, _, _, _ := chainNet(t)
	drv := exec.New(net)
	require.NoError(t, drv.ForwardProp("y"))

	// Splice an extra doubling stage between s and y.
	extra := &scaleNode{Base: core.NewBase("extra", "Scale", core.WithShape(2, 1), core.WithInputs("s")), k: 2}
	require.NoError(t, net.AddNode(extra))
	require.NoError(t, net.AttachInputs("y", "extra", "x"))
	require.NoError(t, drv.Touch("x"))

	require.NoError(t, drv.ForwardProp("y"))
	out, err := drv.Output("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 14}, out.Data) // 2·3·x + x
}

// TestDriver_UnknownRoot checks the error path for a root that was
// never registered.
func TestDriver_UnknownRoot(t *testing.T) {
	net := core.NewNetwork()
	drv := exec.New(net)

	err := drv.ForwardProp("nope")
	assert.ErrorIs(t, err, core.ErrNodeNotFound)
	err = drv.Backprop("nope")
	assert.ErrorIs(t, err, core.ErrNodeNotFound)
}
