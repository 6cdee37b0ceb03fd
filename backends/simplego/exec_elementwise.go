// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"math"

	"github.com/gomlx/symgrad/pkg/core/graph"
)

func init() {
	registerUnary(graph.NodeTypeReciprocal, func(x float64) float64 { return 1 / x })
	registerUnary(graph.NodeTypeSin, math.Sin)
	registerUnary(graph.NodeTypeLog2, math.Log2)
	registerUnary(graph.NodeTypeExp2, math.Exp2)
	registerUnary(graph.NodeTypeSqrt, math.Sqrt)

	// Cast is done by the rounding to the output dtype after every operation.
	for _, nodeType := range []graph.NodeType{
		graph.NodeTypeCast, graph.NodeTypeContiguous, graph.NodeTypeFuse, graph.NodeTypeContiguousBackward,
		graph.NodeTypeDetach, graph.NodeTypeCopy, graph.NodeTypeReshape} {
		registerUnary(nodeType, func(x float64) float64 { return x })
	}
	nodeExecutors[graph.NodeTypeBitcast] = execBitcast

	registerBinary(graph.NodeTypeAdd, func(a, b float64) float64 { return a + b })
	registerBinary(graph.NodeTypeMul, func(a, b float64) float64 { return a * b })
	registerBinary(graph.NodeTypePow, math.Pow)
	registerBinary(graph.NodeTypeMax, math.Max)
	registerBinary(graph.NodeTypeLessThan, func(a, b float64) float64 { return boolToFloat(a < b) })
	registerBinary(graph.NodeTypeNotEqual, func(a, b float64) float64 { return boolToFloat(a != b) })
	registerBinary(graph.NodeTypeLogicalAnd, func(a, b float64) float64 { return boolToFloat(a != 0 && b != 0) })

	nodeExecutors[graph.NodeTypeWhere] = execWhere
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// registerUnary registers an elementwise executor for a node with one input, whose output has
// the same number of elements.
func registerUnary(nodeType graph.NodeType, fn func(x float64) float64) {
	nodeExecutors[nodeType] = func(node *graph.Node, inputs []*Buffer) *Buffer {
		output := newBuffer(node.Shape())
		for ii, x := range inputs[0].flat {
			output.flat[ii] = fn(x)
		}
		return output
	}
}

func registerBinary(nodeType graph.NodeType, fn func(a, b float64) float64) {
	nodeExecutors[nodeType] = func(node *graph.Node, inputs []*Buffer) *Buffer {
		output := newBuffer(node.Shape())
		lhs, rhs := inputs[0].flat, inputs[1].flat
		for ii := range output.flat {
			output.flat[ii] = fn(lhs[ii], rhs[ii])
		}
		return output
	}
}

// execBitcast reinterprets the bits of each value in the output dtype.
func execBitcast(node *graph.Node, inputs []*Buffer) *Buffer {
	from, to := inputs[0].shape.DType, node.DType()
	output := newBuffer(node.Shape())
	for ii, x := range inputs[0].flat {
		output.flat[ii] = to.FromBits(from.ToBits(x))
	}
	return output
}

func execWhere(node *graph.Node, inputs []*Buffer) *Buffer {
	output := newBuffer(node.Shape())
	condition, onTrue, onFalse := inputs[0].flat, inputs[1].flat, inputs[2].flat
	for ii := range output.flat {
		if condition[ii] != 0 {
			output.flat[ii] = onTrue[ii]
		} else {
			output.flat[ii] = onFalse[ii]
		}
	}
	return output
}
