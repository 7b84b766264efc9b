// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// config.go — internal configuration and deterministic defaults.

package builder

// defaultRows is the fallback row count for nodes declared without an
// explicit dimension.
const defaultRows = 1

// builderConfig is the immutable resolved configuration shared by all
// constructors of one Build call.
type builderConfig struct {
	rows          int  // default row count
	needsGradient bool // interior nodes request gradient buffers
}

// newBuilderConfig resolves options over the defaults, left to right.
func newBuilderConfig(opts ...Option) builderConfig {
	cfg := builderConfig{rows: defaultRows}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// rowsOr picks the explicit row count when positive, else the default.
func (cfg builderConfig) rowsOr(rows int) int {
	if rows > 0 {
		return rows
	}

	return cfg.rows
}
