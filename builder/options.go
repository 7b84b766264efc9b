// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// options.go — functional options for the builder package.
//
// Contract (strict):
//   - Options only write fields of builderConfig; they never touch the
//     Network and never fail.
//   - Defaults live in newBuilderConfig (config.go), not here.

package builder

// Option mutates the builder configuration during resolution.
type Option func(*builderConfig)

// WithRows sets the default row count used by constructors whose rows
// argument is zero or negative. Non-positive values are ignored.
func WithRows(rows int) Option {
	return func(cfg *builderConfig) {
		if rows > 0 {
			cfg.rows = rows
		}
	}
}

// WithNeedsGradient makes every interior node created by subsequent
// constructors request a gradient buffer during backprop. Leaves added
// by Input stay gradient-free; Parameter always requests one.
func WithNeedsGradient() Option {
	return func(cfg *builderConfig) { cfg.needsGradient = true }
}
