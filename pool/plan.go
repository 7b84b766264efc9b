package pool

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/compnet/core"
	"github.com/katalvlaran/compnet/order"
)

// Plan holds the pending-reference counts for one evaluation pass,
// derived once from the order structure before any buffer changes
// hands. A fresh Plan is built for every pass; counts are consumed in
// place as the driver walks the order.
type Plan struct {
	refs     map[string]int // lowercased producer → unexecuted consumers
	gradRefs map[string]int // lowercased node → pending gradient holds
}

// BuildPlan derives the reference counts for ord against net.
//
// refs[n] is the number of edges from n to consumers inside the order:
// one reference is consumed per input edge as each consumer executes;
// at zero the output buffer returns to the pool. Roots and otherwise
// unconsumed outputs keep a zero count and are simply never released,
// which leaves them readable by the caller after the pass.
//
// gradRefs[n] is the number of consumers contributing gradient into n
// plus one hold for n's own backprop step, after which the gradient
// buffer is released.
func BuildPlan(net *core.Network, ord *order.Order) (*Plan, error) {
	p := &Plan{
		refs:     make(map[string]int),
		gradRefs: make(map[string]int),
	}

	// 1. Seed every ordered node with a zero count so Consume can tell
	//    "fully consumed" apart from "never produced".
	for _, u := range ord.Units {
		for _, name := range unitNames(u) {
			p.refs[strings.ToLower(name)] = 0
		}
	}

	// 2. Count each input edge once.
	for _, u := range ord.Units {
		for _, name := range unitNames(u) {
			n, err := net.Node(name)
			if err != nil {
				return nil, fmt.Errorf("pool: BuildPlan: %w", err)
			}
			for _, in := range n.InputNames() {
				ik := strings.ToLower(in)
				p.refs[ik]++
				p.gradRefs[ik]++
			}
		}
	}

	// 3. One extra hold per node: its own backprop step reads the
	//    accumulated gradient before the buffer can be recycled.
	for nk := range p.refs {
		p.gradRefs[nk]++
	}

	return p, nil
}

// Refs returns the remaining consumer count for name's output buffer.
func (p *Plan) Refs(name string) int { return p.refs[strings.ToLower(name)] }

// GradRefs returns the remaining holds on name's gradient buffer.
func (p *Plan) GradRefs(name string) int { return p.gradRefs[strings.ToLower(name)] }

// Consume spends one output reference of name and reports whether the
// count reached zero — the release point. Names without pending
// references report false (never release on double-count).
func (p *Plan) Consume(name string) bool {
	k := strings.ToLower(name)
	c, ok := p.refs[k]
	if !ok || c <= 0 {
		return false
	}
	c--
	p.refs[k] = c

	return c == 0
}

// ConsumeGrad spends one gradient hold of name, reporting the release
// point exactly like Consume.
func (p *Plan) ConsumeGrad(name string) bool {
	k := strings.ToLower(name)
	c, ok := p.gradRefs[k]
	if !ok || c <= 0 {
		return false
	}
	c--
	p.gradRefs[k] = c

	return c == 0
}

// unitNames flattens one unit into its node names.
func unitNames(u order.Unit) []string {
	if u.IsLoop() {
		return u.Loop.Nodes
	}

	return []string{u.Node.Name()}
}
