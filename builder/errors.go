// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// errors.go — sentinel errors for the builder package.
//
// Error policy (explicit and strict):
//   - ErrConstruct is the umbrella sentinel: every failure leaving this
//     package wraps it, so callers can branch with a single errors.Is.
//   - Registry-level causes (duplicate name, missing input, ...) stay
//     in the chain as core sentinels; unwrap to inspect them.
//   - Constructors never panic.

package builder

import "errors"

// ErrConstruct reports that a constructor could not apply its mutation.
// The chain always carries the underlying cause.
var ErrConstruct = errors.New("builder: construction failed")
