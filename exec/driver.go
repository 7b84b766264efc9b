package exec

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/compnet/core"
	"github.com/katalvlaran/compnet/loops"
	"github.com/katalvlaran/compnet/order"
	"github.com/katalvlaran/compnet/pool"
)

// Driver walks cached execution orders over one Network, invoking node
// hooks and moving buffers through the pool per the reference plan.
// It owns an order.Builder, so graph edits invalidate its orders
// automatically; buffers bound to nodes persist across passes until
// the plan releases them.
type Driver struct {
	net     *core.Network
	builder *order.Builder
	opts    options

	outputs map[string]*pool.Buffer // lowercased name → live output buffer
	grads   map[string]*pool.Buffer // lowercased name → live gradient buffer

	gradTouched map[string]bool // grads zeroed in the current pass
}

// New creates a Driver bound to net. Options are applied left-to-right.
func New(net *core.Network, opts ...Option) *Driver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Driver{
		net:     net,
		builder: order.NewBuilder(net),
		opts:    o,
		outputs: make(map[string]*pool.Buffer),
		grads:   make(map[string]*pool.Buffer),
	}
}

// EvaluationOrder exposes the cached forward order for root.
func (d *Driver) EvaluationOrder(root string) (*order.Order, error) {
	return d.builder.EvaluationOrder(root)
}

// GradientOrder exposes the cached backward order for root.
func (d *Driver) GradientOrder(root string) (*order.Order, error) {
	return d.builder.GradientOrder(root)
}

// Pool returns the driver's buffer pool.
func (d *Driver) Pool() *pool.Pool { return d.opts.pool }

// Output returns the live output buffer of name.
func (d *Driver) Output(name string) (*pool.Buffer, error) {
	b := d.outputs[strings.ToLower(name)]
	if b == nil {
		return nil, fmt.Errorf("exec: Output %q: %w", name, ErrNoOutput)
	}

	return b, nil
}

// Gradient returns the live gradient buffer of name.
func (d *Driver) Gradient(name string) (*pool.Buffer, error) {
	b := d.grads[strings.ToLower(name)]
	if b == nil {
		return nil, fmt.Errorf("exec: Gradient %q: %w", name, ErrNoOutput)
	}

	return b, nil
}

// Touch marks the named nodes as freshly modified (new minibatch data,
// updated parameters), so their consumers recompute on the next
// ForwardProp even when otherwise up to date.
func (d *Driver) Touch(names ...string) error {
	for _, name := range names {
		n, err := d.net.Node(name)
		if err != nil {
			return fmt.Errorf("exec: Touch: %w", err)
		}
		n.SetEvalStamp(d.net.NextEvalStamp())
	}

	return nil
}

// ForwardProp evaluates the subgraph rooted at root: it obtains the
// cached evaluation order (building it if necessary), derives the
// buffer reference plan once, and walks the units — whole-batch for
// single nodes, step-by-step for loops.
func (d *Driver) ForwardProp(root string) error {
	ord, err := d.builder.EvaluationOrder(root)
	if err != nil {
		return err
	}
	plan, err := pool.BuildPlan(d.net, ord)
	if err != nil {
		return err
	}

	for _, u := range ord.Units {
		if u.IsLoop() {
			err = d.forwardLoop(u.Loop, plan)
		} else {
			err = d.forwardNode(u.Node, plan)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Backprop propagates gradients from root back to every contributing
// node, walking the gradient order. Loops are stepped in the reverse
// of their forward time direction; within a step, members run in
// reverse loop-internal order.
func (d *Driver) Backprop(root string) error {
	ord, err := d.builder.GradientOrder(root)
	if err != nil {
		return err
	}
	plan, err := pool.BuildPlan(d.net, ord)
	if err != nil {
		return err
	}

	// Fresh pass: every gradient buffer is re-zeroed on first touch.
	d.gradTouched = make(map[string]bool)

	// Seed the root with unit gradient.
	rootNode, err := d.net.Node(root)
	if err != nil {
		return fmt.Errorf("exec: Backprop: %w", err)
	}
	seed := d.ensureGrad(rootNode)
	for i := range seed.Data {
		seed.Data[i] = 1
	}

	for _, u := range ord.Units {
		if u.IsLoop() {
			err = d.backpropLoop(u.Loop, plan)
		} else {
			err = d.backpropNode(u.Node, WholeBatch(), plan)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// forwardNode runs one PAR unit: request the output, invoke the hook
// over the whole batch unless the node is already up to date, then
// consume one reference per input edge.
func (d *Driver) forwardNode(n core.Node, plan *pool.Plan) error {
	inputs, inBufs, err := d.inputBuffers(n)
	if err != nil {
		return err
	}
	bound := d.outputs[strings.ToLower(n.Name())] != nil
	out := d.ensureOutput(n)

	// A recycled buffer holds stale data, so skipping is only sound
	// while the previous pass's binding is still live.
	if !bound || !upToDate(n, inputs) {
		if f, ok := n.(Forwarder); ok {
			if err = f.ForwardProp(WholeBatch(), out, inBufs); err != nil {
				return fmt.Errorf("exec: ForwardProp: node %q: %w", n.Name(), err)
			}
		}
		n.SetEvalStamp(d.net.NextEvalStamp())
	}

	d.consumeInputs(n, plan)

	return nil
}

// forwardLoop runs one SEQ unit: request all member outputs up front,
// then invoke every member hook once per time step in the loop's
// stepping direction, and finally consume the members' input edges.
func (d *Driver) forwardLoop(l *loops.Loop, plan *pool.Plan) error {
	members, err := d.loopMembers(l)
	if err != nil {
		return err
	}
	bound := true
	for _, m := range members {
		if d.outputs[strings.ToLower(m.Name())] == nil {
			bound = false
		}
		d.ensureOutput(m)
	}

	if !bound || !d.loopUpToDate(members) {
		for _, t := range timeline(l.Dir, d.opts.timeSteps) {
			for _, m := range members {
				f, ok := m.(Forwarder)
				if !ok {
					continue
				}
				_, inBufs, inErr := d.inputBuffers(m)
				if inErr != nil {
					return inErr
				}
				if err = f.ForwardProp(Step(t), d.outputs[strings.ToLower(m.Name())], inBufs); err != nil {
					return fmt.Errorf("exec: ForwardProp: loop %d node %q step %d: %w", l.ID, m.Name(), t, err)
				}
			}
		}
		for _, m := range members {
			m.SetEvalStamp(d.net.NextEvalStamp())
		}
	}

	for _, m := range members {
		d.consumeInputs(m, plan)
	}

	return nil
}

// backpropNode runs one backward PAR unit: propagate the node's
// accumulated gradient into each input edge, then release the node's
// own gradient once its final hold is consumed.
func (d *Driver) backpropNode(n core.Node, fr FrameRange, plan *pool.Plan) error {
	if err := d.backpropHooks(n, fr); err != nil {
		return err
	}
	d.consumeGrads(n, plan)

	return nil
}

// backpropLoop runs one backward SEQ unit: members in reverse
// loop-internal order, time stepped opposite to the forward direction,
// with gradient holds consumed once after the time loop.
func (d *Driver) backpropLoop(l *loops.Loop, plan *pool.Plan) error {
	members, err := d.loopMembers(l)
	if err != nil {
		return err
	}

	for _, t := range timeline(-l.Dir, d.opts.timeSteps) {
		for i := len(members) - 1; i >= 0; i-- {
			if err = d.backpropHooks(members[i], Step(t)); err != nil {
				return err
			}
		}
	}

	for i := len(members) - 1; i >= 0; i-- {
		d.consumeGrads(members[i], plan)
	}

	return nil
}

// backpropHooks invokes the node's Backpropper capability for every
// input edge, accumulating into each input's gradient buffer.
func (d *Driver) backpropHooks(n core.Node, fr FrameRange) error {
	bp, ok := n.(Backpropper)
	if !ok {
		return nil
	}
	grad := d.ensureGrad(n)
	for i, in := range n.InputNames() {
		child, err := d.net.Node(in)
		if err != nil {
			return fmt.Errorf("exec: Backprop: input %q of %q: %w", in, n.Name(), core.ErrNodeNotFound)
		}
		inGrad := d.ensureGrad(child)
		if err = bp.BackpropTo(i, fr, grad, inGrad); err != nil {
			return fmt.Errorf("exec: Backprop: node %q input %d: %w", n.Name(), i, err)
		}
	}

	return nil
}

// consumeInputs spends one output reference per input edge of n,
// releasing buffers whose pending count reaches zero. Leaf and
// needs-gradient buffers are node-owned and never recycled.
func (d *Driver) consumeInputs(n core.Node, plan *pool.Plan) {
	for _, in := range n.InputNames() {
		k := strings.ToLower(in)
		if !plan.Consume(in) {
			continue
		}
		child, err := d.net.Node(in)
		if err != nil || !poolable(child) {
			continue
		}
		d.opts.pool.Release(d.outputs[k])
		delete(d.outputs, k)
	}
}

// consumeGrads spends one gradient hold per input edge of n plus the
// node's own final hold, releasing recyclable gradient buffers at
// zero. Inside a SEQ unit the final hold of one member can be spent by
// a later member's input edge, so the edge decrements are release
// points too.
func (d *Driver) consumeGrads(n core.Node, plan *pool.Plan) {
	for _, in := range n.InputNames() {
		if !plan.ConsumeGrad(in) {
			continue
		}
		if child, err := d.net.Node(in); err == nil && !child.NeedsGradient() {
			d.releaseGrad(in)
		}
	}
	if !plan.ConsumeGrad(n.Name()) {
		return
	}
	if n.NeedsGradient() {
		return // optimizer reads parameter gradients after the pass
	}
	d.releaseGrad(n.Name())
}

// releaseGrad returns name's gradient buffer to the pool and drops the
// binding.
func (d *Driver) releaseGrad(name string) {
	k := strings.ToLower(name)
	d.opts.pool.Release(d.grads[k])
	delete(d.grads, k)
}

// ensureOutput binds a pool buffer to n's output, reusing the binding
// from the previous pass when it survived the plan.
func (d *Driver) ensureOutput(n core.Node) *pool.Buffer {
	k := strings.ToLower(n.Name())
	if b := d.outputs[k]; b != nil {
		return b
	}
	s := n.Shape()
	b := d.opts.pool.Request(s.Rows, d.cols(s))
	d.outputs[k] = b

	return b
}

// ensureGrad binds (and once per pass, zeroes) n's gradient buffer.
func (d *Driver) ensureGrad(n core.Node) *pool.Buffer {
	k := strings.ToLower(n.Name())
	b := d.grads[k]
	if b == nil {
		s := n.Shape()
		b = d.opts.pool.Request(s.Rows, d.cols(s))
		d.grads[k] = b
	}
	if !d.gradTouched[k] {
		b.Zero()
		d.gradTouched[k] = true
	}

	return b
}

// inputBuffers resolves n's inputs and their live buffers in declared
// order.
func (d *Driver) inputBuffers(n core.Node) ([]core.Node, []*pool.Buffer, error) {
	names := n.InputNames()
	nodes := make([]core.Node, len(names))
	bufs := make([]*pool.Buffer, len(names))
	for i, in := range names {
		child, err := d.net.Node(in)
		if err != nil {
			return nil, nil, fmt.Errorf("exec: input %q of %q: %w", in, n.Name(), core.ErrNodeNotFound)
		}
		nodes[i] = child
		bufs[i] = d.ensureOutput(child)
	}

	return nodes, bufs, nil
}

// loopMembers resolves the loop's member nodes in loop-internal order.
func (d *Driver) loopMembers(l *loops.Loop) ([]core.Node, error) {
	members := make([]core.Node, len(l.Nodes))
	for i, name := range l.Nodes {
		m, err := d.net.Node(name)
		if err != nil {
			return nil, fmt.Errorf("exec: loop %d member %q: %w", l.ID, name, core.ErrNodeNotFound)
		}
		members[i] = m
	}

	return members, nil
}

// cols resolves a batch-dependent column count.
func (d *Driver) cols(s core.Shape) int {
	if s.Cols == 0 {
		return d.opts.batchCols
	}

	return s.Cols
}

// upToDate reports the skip-recompute condition: the node has been
// evaluated and its stamp is newer than every input's stamp.
func upToDate(n core.Node, inputs []core.Node) bool {
	stamp := n.EvalStamp()
	if stamp == 0 {
		return false
	}
	for _, in := range inputs {
		if in.EvalStamp() >= stamp {
			return false
		}
	}

	return true
}

// loopUpToDate extends the skip condition to a whole SEQ unit: every
// member must be newer than every member's external input.
func (d *Driver) loopUpToDate(members []core.Node) bool {
	inLoop := make(map[string]bool, len(members))
	for _, m := range members {
		inLoop[strings.ToLower(m.Name())] = true
	}

	var oldest int64
	for _, m := range members {
		stamp := m.EvalStamp()
		if stamp == 0 {
			return false
		}
		if oldest == 0 || stamp < oldest {
			oldest = stamp
		}
	}
	for _, m := range members {
		for _, in := range m.InputNames() {
			if inLoop[strings.ToLower(in)] {
				continue
			}
			if child, err := d.net.Node(in); err == nil && child.EvalStamp() >= oldest {
				return false
			}
		}
	}

	return true
}

// poolable reports whether a node's output buffer may be recycled:
// intermediate results only — leaves and gradient-bearing nodes own
// their buffers across passes.
func poolable(n core.Node) bool {
	return len(n.InputNames()) > 0 && !n.NeedsGradient()
}

// timeline yields the step indices 0…T−1 in the given direction.
func timeline(dir loops.Direction, steps int) []int {
	out := make([]int, steps)
	for i := range out {
		if dir == loops.Forward {
			out[i] = i
		} else {
			out[i] = steps - 1 - i
		}
	}

	return out
}
