// Package exec defines the FrameRange indicator, the node execution
// capabilities, and Driver options. The traversal lives in driver.go.
package exec

import (
	"errors"

	"github.com/katalvlaran/compnet/pool"
)

// ErrNoOutput indicates a requested node has no live output buffer
// (it was never computed, or its buffer was already recycled).
var ErrNoOutput = errors.New("exec: node has no live output buffer")

// FrameRange tells a node hook whether it is being invoked over the
// whole batch at once (PAR) or for one discrete time step (SEQ).
type FrameRange struct {
	step  int
	whole bool
}

// WholeBatch returns the PAR indicator: operate on all parallel
// sequences and time steps simultaneously.
func WholeBatch() FrameRange { return FrameRange{whole: true} }

// Step returns the SEQ indicator for time step t.
func Step(t int) FrameRange { return FrameRange{step: t} }

// IsWholeBatch reports whether this is a whole-batch invocation.
func (fr FrameRange) IsWholeBatch() bool { return fr.whole }

// Index returns the time step of a SEQ invocation; 0 for whole-batch.
func (fr FrameRange) Index() int { return fr.step }

// Forwarder is the forward-evaluation capability. out is the node's
// output buffer; in holds the inputs' live buffers in declared order.
type Forwarder interface {
	ForwardProp(fr FrameRange, out *pool.Buffer, in []*pool.Buffer) error
}

// Backpropper is the gradient capability: accumulate the gradient
// flowing through input edge i into inGrad, given the node's own
// accumulated output gradient.
type Backpropper interface {
	BackpropTo(i int, fr FrameRange, grad, inGrad *pool.Buffer) error
}

// Option configures a Driver.
type Option func(*options)

// options holds resolved Driver settings.
type options struct {
	timeSteps int        // SEQ dimension length T
	batchCols int        // resolves Shape.Cols == 0
	pool      *pool.Pool // shared buffer pool
}

// defaultOptions returns a single-step, single-column configuration
// with a private pool.
func defaultOptions() options {
	return options{timeSteps: 1, batchCols: 1, pool: pool.New()}
}

// WithTimeSteps sets the number of discrete time steps T that SEQ
// loops iterate over. Values < 1 are ignored.
func WithTimeSteps(t int) Option {
	return func(o *options) {
		if t >= 1 {
			o.timeSteps = t
		}
	}
}

// WithBatchCols sets the concrete column count substituted for
// batch-dependent shapes (Shape.Cols == 0). Values < 1 are ignored.
func WithBatchCols(cols int) Option {
	return func(o *options) {
		if cols >= 1 {
			o.batchCols = cols
		}
	}
}

// WithPool shares an existing buffer pool with the driver (for example
// to reuse buffers across several drivers over the same device).
// A nil pool has no effect.
func WithPool(p *pool.Pool) Option {
	return func(o *options) {
		if p != nil {
			o.pool = p
		}
	}
}
