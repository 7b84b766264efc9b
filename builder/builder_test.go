// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// builder_test.go — black-box tests for the fixture constructors.

package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/compnet/builder"
	"github.com/katalvlaran/compnet/core"
	"github.com/katalvlaran/compnet/loops"
)

// TestBuild_MLP assembles a one-layer perceptron and checks names,
// edges, shapes, groups and gradient flags.
func TestBuild_MLP(t *testing.T) {
	net, err := builder.Build(nil,
		builder.Input("x", 4),
		builder.Parameter("W", 3, 4),
		builder.Parameter("b", 3, 1),
		builder.Binary("h", "Times", "W", "x"),
		builder.Binary("z", "Plus", "h", "b"),
		builder.Criterion("crit", "SumElements", "z"),
	)
	require.NoError(t, err)

	assert.Equal(t, 6, net.Len())
	assert.Equal(t, []string{"x"}, net.Group(core.GroupFeatures))
	assert.Equal(t, []string{"crit"}, net.Group(core.GroupCriteria))

	x, err := net.Node("x")
	require.NoError(t, err)
	assert.Equal(t, core.Shape{Rows: 4, Cols: 0}, x.Shape())
	assert.False(t, x.NeedsGradient())

	w, err := net.Node("W")
	require.NoError(t, err)
	assert.Equal(t, core.Shape{Rows: 3, Cols: 4}, w.Shape())
	assert.True(t, w.NeedsGradient())

	h, err := net.Node("h")
	require.NoError(t, err)
	assert.Equal(t, []string{"W", "x"}, h.InputNames())
	assert.Equal(t, "Times", h.Operation())
}

// TestBuild_Chain checks the generated names and the linear wiring.
func TestBuild_Chain(t *testing.T) {
	net, err := builder.Build(nil,
		builder.Input("x", 2),
		builder.Chain("layer", "Sigmoid", 3, "x"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"layer1", "layer2", "layer3"}, net.NodesWithOperation("Sigmoid"))
	l2, err := net.Node("layer2")
	require.NoError(t, err)
	assert.Equal(t, []string{"layer1"}, l2.InputNames())
}

// TestBuild_Recurrence closes a loop through a delay edge and expects
// loop detection to classify it as a single forward recurrence.
func TestBuild_Recurrence(t *testing.T) {
	net, err := builder.Build(nil,
		builder.Input("x", 1),
		builder.Recurrence("h", "Plus", "x", "prev", -1),
		builder.Criterion("crit", "SumElements", "h"),
	)
	require.NoError(t, err)

	prev, err := net.Node("prev")
	require.NoError(t, err)
	assert.Equal(t, builder.OpPastValue, prev.Operation())
	assert.Equal(t, []string{"h"}, prev.InputNames())

	res, err := loops.Detect(net, "crit")
	require.NoError(t, err)
	require.Len(t, res.Loops, 1)
	assert.Equal(t, loops.Forward, res.Loops[0].Dir)
	assert.ElementsMatch(t, []string{"h", "prev"}, res.Loops[0].Nodes)
}

// TestBuild_RecurrenceLookahead uses a positive offset and expects the
// backward stepping direction.
func TestBuild_RecurrenceLookahead(t *testing.T) {
	net, err := builder.Build(nil,
		builder.Input("x", 1),
		builder.Recurrence("h", "Plus", "x", "next", +1),
	)
	require.NoError(t, err)

	next, err := net.Node("next")
	require.NoError(t, err)
	assert.Equal(t, builder.OpFutureValue, next.Operation())

	res, err := loops.Detect(net, "h")
	require.NoError(t, err)
	require.Len(t, res.Loops, 1)
	assert.Equal(t, loops.Backward, res.Loops[0].Dir)
}

// TestBuild_Options checks default rows and the gradient policy knob.
func TestBuild_Options(t *testing.T) {
	net, err := builder.Build(
		[]builder.Option{builder.WithRows(8), builder.WithNeedsGradient()},
		builder.Input("x", 0),
		builder.Unary("act", "Tanh", "x"),
	)
	require.NoError(t, err)

	x, err := net.Node("x")
	require.NoError(t, err)
	assert.Equal(t, 8, x.Shape().Rows, "Input falls back to WithRows")
	assert.False(t, x.NeedsGradient(), "inputs stay gradient-free")

	act, err := net.Node("act")
	require.NoError(t, err)
	assert.True(t, act.NeedsGradient())
}

// TestBuild_Errors exercises the failure paths; every error must wrap
// ErrConstruct and keep the underlying cause in the chain.
func TestBuild_Errors(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		_, err := builder.Build(nil,
			builder.Input("x", 1),
			builder.Input("x", 1),
		)
		assert.ErrorIs(t, err, builder.ErrConstruct)
		assert.ErrorIs(t, err, core.ErrDuplicateName)
	})

	t.Run("nil constructor", func(t *testing.T) {
		_, err := builder.Build(nil, nil)
		assert.ErrorIs(t, err, builder.ErrConstruct)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := builder.Build(nil,
			builder.Input("x", 1),
			builder.Chain("layer", "Tanh", 0, "x"),
		)
		assert.ErrorIs(t, err, builder.ErrConstruct)
	})

	t.Run("zero-offset recurrence", func(t *testing.T) {
		_, err := builder.Build(nil,
			builder.Input("x", 1),
			builder.Recurrence("h", "Plus", "x", "prev", 0),
		)
		assert.ErrorIs(t, err, builder.ErrConstruct)
	})

	t.Run("parameter without cols", func(t *testing.T) {
		_, err := builder.Build(nil, builder.Parameter("W", 3, 0))
		assert.ErrorIs(t, err, builder.ErrConstruct)
	})

	t.Run("group membership for unknown node", func(t *testing.T) {
		_, err := builder.Build(nil, builder.InGroup(core.GroupOutputs, "ghost"))
		assert.ErrorIs(t, err, builder.ErrConstruct)
		assert.ErrorIs(t, err, core.ErrNodeNotFound)
	})
}

// TestExtend grows an existing network and rejects a nil target.
func TestExtend(t *testing.T) {
	net, err := builder.Build(nil, builder.Input("x", 2))
	require.NoError(t, err)

	require.NoError(t, builder.Extend(net, nil,
		builder.Unary("act", "Tanh", "x"),
		builder.InGroup(core.GroupOutputs, "act"),
	))
	assert.Equal(t, []string{"act"}, net.Group(core.GroupOutputs))

	err = builder.Extend(nil, nil, builder.Input("y", 1))
	assert.ErrorIs(t, err, builder.ErrConstruct)
}
