package core_test

import (
	"fmt"

	"github.com/katalvlaran/compnet/core"
)

// elemwiseNode is an element-wise operation: its output shape equals
// its inputs' common shape; differing input shapes fail inference.
type elemwiseNode struct {
	*core.Base
}

func newElemwise(name string, inputs ...string) *elemwiseNode {
	return &elemwiseNode{Base: core.NewBase(name, "Plus", core.WithInputs(inputs...))}
}

// InferShape implements core.Shaper for element-wise semantics.
func (n *elemwiseNode) InferShape(inputs []core.Shape) (core.Shape, error) {
	if len(inputs) == 0 {
		return core.Shape{}, fmt.Errorf("Plus: no inputs: %w", core.ErrShape)
	}
	first := inputs[0]
	if !first.Resolved() {
		return core.Shape{}, fmt.Errorf("Plus: unresolved input: %w", core.ErrShape)
	}
	for _, s := range inputs[1:] {
		if s != first {
			return core.Shape{}, fmt.Errorf("Plus: mismatched inputs: %w", core.ErrShape)
		}
	}

	return first, nil
}

// projNode is a projection (matrix product): input 0 is a parameter of
// shape [m×k], input 1 an activation of shape [k×n]; output is [m×n].
type projNode struct {
	*core.Base
}

func newProj(name, param, activation string) *projNode {
	return &projNode{Base: core.NewBase(name, "Times", core.WithInputs(param, activation))}
}

// InferShape implements core.Shaper for projection semantics.
func (n *projNode) InferShape(inputs []core.Shape) (core.Shape, error) {
	if len(inputs) != 2 {
		return core.Shape{}, fmt.Errorf("Times: want 2 inputs, got %d: %w", len(inputs), core.ErrShape)
	}
	w, x := inputs[0], inputs[1]
	if !w.Resolved() || !x.Resolved() {
		return core.Shape{}, fmt.Errorf("Times: unresolved input: %w", core.ErrShape)
	}
	if w.Cols != x.Rows {
		return core.Shape{}, fmt.Errorf("Times: inner dimensions %d vs %d: %w", w.Cols, x.Rows, core.ErrShape)
	}

	return core.Shape{Rows: w.Rows, Cols: x.Cols}, nil
}

// input returns a declared-shape leaf node (feature or parameter).
func input(name string, rows, cols int) *core.Base {
	return core.NewBase(name, "InputValue", core.WithShape(rows, cols))
}
