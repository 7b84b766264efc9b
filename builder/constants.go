// SPDX-License-Identifier: MIT
// Package: compnet/builder
//
// constants.go — operation tags emitted by the stock constructors.
//
// Callers may pass any tag to Unary/Binary/Chain; these names only fix
// what the builder itself writes, so fixtures stay grep-able.

package builder

const (
	// OpInput tags feature leaves created by Input.
	OpInput = "Input"

	// OpParameter tags learnable leaves created by Parameter.
	OpParameter = "LearnableParameter"

	// OpPastValue tags delay edges looking one or more steps back.
	OpPastValue = "PastValue"

	// OpFutureValue tags delay edges looking ahead.
	OpFutureValue = "FutureValue"
)
