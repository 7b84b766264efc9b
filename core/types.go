// Package core defines the Node capability set, the Shape type, and the
// Network registry that owns all nodes of one computation graph.
//
// This file declares Shape, Node and its optional capabilities, the
// Group enumeration, sentinel errors, NodeOption, and the Base node.
// Registry methods live in network.go; validation in validate.go.
package core

import "errors"

// Sentinel errors for core registry and validation operations.
var (
	// ErrNilNode indicates a nil Node was passed to a registry operation.
	ErrNilNode = errors.New("core: node is nil")

	// ErrEmptyNodeName indicates the provided node name is the empty string.
	ErrEmptyNodeName = errors.New("core: node name is empty")

	// ErrDuplicateName indicates an edit would register a name already present
	// (names are compared case-insensitively).
	ErrDuplicateName = errors.New("core: duplicate node name")

	// ErrNodeNotFound indicates a lookup by name failed.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrRenameUnsupported indicates RenameNode was asked to rename a node
	// that does not carry the rename capability (one not embedding Base);
	// such nodes must be replaced instead.
	ErrRenameUnsupported = errors.New("core: node does not support rename")

	// ErrShape indicates validation could not reconcile node dimensions
	// within the bounded pass limit.
	ErrShape = errors.New("core: inconsistent or unresolved shape")
)

// Shape is a node's declared output dimensionality.
//
// Rows is fixed by the operation; Cols may be 0, meaning the column
// count depends on the batch being evaluated and is resolved by the
// execution driver at evaluation time.
type Shape struct {
	// Rows is the fixed row dimension of the node's output.
	Rows int

	// Cols is the column dimension; 0 means batch-size-dependent.
	Cols int
}

// Resolved reports whether both dimensions carry a concrete value
// (Cols == 0 counts as resolved: it is deferred, not unknown).
func (s Shape) Resolved() bool { return s.Rows > 0 }

// Node is the capability set the scheduler requires from every
// computation node. Concrete node types typically embed Base and add
// numeric behavior through the exec package's Forwarder/Backpropper
// capabilities.
type Node interface {
	// Name returns the node's unique (case-insensitive) name.
	Name() string

	// Operation returns the node's operation tag (e.g. "Times", "Sigmoid").
	Operation() string

	// InputNames returns the ordered list of input node names.
	// Inputs are non-owning references resolved through the Network.
	InputNames() []string

	// SetInputs replaces the ordered input list.
	// Callers should go through Network.AttachInputs so the edit bumps
	// the network version.
	SetInputs(names ...string)

	// Shape returns the node's current (possibly still unresolved) shape.
	Shape() Shape

	// SetShape records the shape determined during validation.
	SetShape(s Shape)

	// NeedsGradient reports whether a gradient buffer must be produced
	// for this node during backprop.
	NeedsGradient() bool

	// EvalStamp returns the node's modification timestamp; a node whose
	// stamp is newer than all of its inputs' stamps may skip recompute.
	EvalStamp() int64

	// SetEvalStamp records a new modification timestamp.
	SetEvalStamp(t int64)
}

// Shaper is the optional shape-inference capability consulted by
// Network.Validate. A node without it keeps its declared Shape.
type Shaper interface {
	// InferShape derives the node's output shape from its inputs'
	// shapes, in declared input order. Returning ErrShape (wrapped or
	// not) marks the pass as failed for this node; returning a shape
	// differing from the current one keeps the fixpoint iteration going.
	InferShape(inputs []Shape) (Shape, error)
}

// TimeShifter marks a node whose output at time step t is consumed at
// step t+TimeOffset() — the cross-time-step edge that legitimizes a
// cycle. Negative offsets reference past steps (a delay), positive
// offsets reference future steps.
type TimeShifter interface {
	// TimeOffset returns the signed cross-time-step offset. A value of
	// zero on a node participating in a cycle is a design error and is
	// rejected by loop detection.
	TimeOffset() int
}

// Group names a node group within a Network. Membership tags nodes for
// collaborator lookup (readers bind features, trainers pick criteria);
// it never implies exclusive ownership.
type Group string

// The canonical node groups of a computation network.
const (
	GroupFeatures   Group = "features"   // minibatch feature inputs
	GroupLabels     Group = "labels"     // minibatch label inputs
	GroupCriteria   Group = "criteria"   // training criterion roots
	GroupEvaluation Group = "evaluation" // evaluation criterion roots
	GroupOutputs    Group = "outputs"    // network output nodes
	GroupPairs      Group = "pairs"      // pass-through pairing nodes
)

// NodeOption configures a Base node at construction.
type NodeOption func(*Base)

// WithShape declares the node's output shape up front (typical for
// feature inputs and learnable parameters).
func WithShape(rows, cols int) NodeOption {
	return func(b *Base) { b.shape = Shape{Rows: rows, Cols: cols} }
}

// WithNeedsGradient marks the node as requiring a gradient buffer.
func WithNeedsGradient() NodeOption {
	return func(b *Base) { b.needsGradient = true }
}

// WithInputs sets the initial ordered input list.
func WithInputs(names ...string) NodeOption {
	return func(b *Base) { b.inputs = append([]string(nil), names...) }
}
