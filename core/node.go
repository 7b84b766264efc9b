package core

// Base is the embeddable default Node implementation: name, operation
// tag, ordered input references, declared shape, needs-gradient flag
// and evaluation timestamp. Concrete node types embed Base and layer
// numeric capabilities (Shaper, TimeShifter, exec.Forwarder) on top.
type Base struct {
	name          string   // unique within the owning Network (case-insensitive)
	op            string   // operation tag
	inputs        []string // ordered, non-owning input references
	shape         Shape    // declared or inferred output shape
	needsGradient bool     // gradient buffer required during backprop
	evalStamp     int64    // modification timestamp for skip-recompute
}

// NewBase constructs a Base node with the given name and operation tag.
// Options are applied left-to-right. Name validity is checked when the
// node is registered with a Network, not here.
func NewBase(name, op string, opts ...NodeOption) *Base {
	b := &Base{name: name, op: op}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns the node's unique name.
func (b *Base) Name() string { return b.name }

// Operation returns the node's operation tag.
func (b *Base) Operation() string { return b.op }

// InputNames returns the ordered input list. The returned slice is a
// copy; mutate inputs through SetInputs (via Network.AttachInputs).
func (b *Base) InputNames() []string {
	return append([]string(nil), b.inputs...)
}

// SetInputs replaces the ordered input list.
func (b *Base) SetInputs(names ...string) {
	b.inputs = append([]string(nil), names...)
}

// Shape returns the node's current shape.
func (b *Base) Shape() Shape { return b.shape }

// SetShape records the shape determined during validation.
func (b *Base) SetShape(s Shape) { b.shape = s }

// NeedsGradient reports whether backprop must produce a gradient for
// this node.
func (b *Base) NeedsGradient() bool { return b.needsGradient }

// EvalStamp returns the node's modification timestamp.
func (b *Base) EvalStamp() int64 { return b.evalStamp }

// SetEvalStamp records a new modification timestamp.
func (b *Base) SetEvalStamp(t int64) { b.evalStamp = t }

// rename is used by Network.RenameNode; unexported so arbitrary callers
// cannot bypass registry bookkeeping.
func (b *Base) rename(name string) { b.name = name }

// renamer is the capability RenameNode needs from a node. Base provides
// it; nodes not embedding Base must be replaced instead of renamed.
type renamer interface{ rename(name string) }
