// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/graph"
)

func init() {
	nodeExecutors[graph.NodeTypeReduceAxis] = execReduce
	nodeExecutors[graph.NodeTypePermute] = execPermute
	nodeExecutors[graph.NodeTypePad] = execPad
	nodeExecutors[graph.NodeTypeShrink] = execShrink
	nodeExecutors[graph.NodeTypeFlip] = execFlip
	nodeExecutors[graph.NodeTypeExpand] = execExpand
	nodeExecutors[graph.NodeTypeMulti] = execMulti
}

func execReduce(node *graph.Node, inputs []*Buffer) *Buffer {
	op, axes := node.ReduceParams()
	var initial float64
	var reduceFn func(a, b float64) float64
	switch op {
	case graph.ReduceOpSum:
		reduceFn = func(a, b float64) float64 { return a + b }
	case graph.ReduceOpProduct:
		initial = 1
		reduceFn = func(a, b float64) float64 { return a * b }
	case graph.ReduceOpMax:
		initial = node.DType().LowestValue()
		reduceFn = math.Max
	default:
		exceptions.Panicf("simplego: reduction %s not supported", op)
	}
	output := newBuffer(node.Shape())
	for ii := range output.flat {
		output.flat[ii] = initial
	}
	input := inputs[0]
	outputIndices := make([]int, input.shape.Rank())
	for flatIdx, indices := range input.shape.Iter() {
		copy(outputIndices, indices)
		for _, axis := range axes {
			outputIndices[axis] = 0
		}
		outputIdx := output.shape.FlatIndex(outputIndices)
		output.flat[outputIdx] = reduceFn(output.flat[outputIdx], input.flat[flatIdx])
	}
	return output
}

// execPermute: output axis i is input axis permutation[i].
func execPermute(node *graph.Node, inputs []*Buffer) *Buffer {
	permutation := node.Permutation()
	output := newBuffer(node.Shape())
	inputIndices := make([]int, len(permutation))
	for flatIdx, indices := range output.shape.Iter() {
		for axis, inputAxis := range permutation {
			inputIndices[inputAxis] = indices[axis]
		}
		output.flat[flatIdx] = inputs[0].at(inputIndices)
	}
	return output
}

func execPad(node *graph.Node, inputs []*Buffer) *Buffer {
	paddings := node.Paddings()
	output := newBuffer(node.Shape())
	input := inputs[0]
	outputIndices := make([]int, input.shape.Rank())
	for flatIdx, indices := range input.shape.Iter() {
		for axis, idx := range indices {
			outputIndices[axis] = idx + paddings[axis][0]
		}
		output.flat[output.shape.FlatIndex(outputIndices)] = input.flat[flatIdx]
	}
	return output
}

func execShrink(node *graph.Node, inputs []*Buffer) *Buffer {
	bounds := node.ShrinkBounds()
	output := newBuffer(node.Shape())
	inputIndices := make([]int, len(bounds))
	for flatIdx, indices := range output.shape.Iter() {
		for axis, idx := range indices {
			inputIndices[axis] = idx + bounds[axis][0]
		}
		output.flat[flatIdx] = inputs[0].at(inputIndices)
	}
	return output
}

func execFlip(node *graph.Node, inputs []*Buffer) *Buffer {
	axes := node.FlipAxes()
	output := newBuffer(node.Shape())
	inputIndices := make([]int, output.shape.Rank())
	for flatIdx, indices := range output.shape.Iter() {
		copy(inputIndices, indices)
		for _, axis := range axes {
			inputIndices[axis] = output.shape.Dimensions[axis] - 1 - indices[axis]
		}
		output.flat[flatIdx] = inputs[0].at(inputIndices)
	}
	return output
}

func execExpand(node *graph.Node, inputs []*Buffer) *Buffer {
	input := inputs[0]
	output := newBuffer(node.Shape())
	inputIndices := make([]int, output.shape.Rank())
	for flatIdx, indices := range output.shape.Iter() {
		for axis, idx := range indices {
			if input.shape.Dimensions[axis] == 1 {
				inputIndices[axis] = 0
			} else {
				inputIndices[axis] = idx
			}
		}
		output.flat[flatIdx] = input.at(inputIndices)
	}
	return output
}

// execMulti concatenates the shards along the shard axis, or takes the first shard if replicated.
func execMulti(node *graph.Node, inputs []*Buffer) *Buffer {
	axis := node.ShardAxis()
	if axis < 0 {
		return &Buffer{shape: node.Shape(), flat: slices.Clone(inputs[0].flat)}
	}
	output := newBuffer(node.Shape())
	shardDim := inputs[0].shape.Dimensions[axis]
	inputIndices := make([]int, output.shape.Rank())
	for flatIdx, indices := range output.shape.Iter() {
		copy(inputIndices, indices)
		shardIdx := indices[axis] / shardDim
		inputIndices[axis] = indices[axis] % shardDim
		output.flat[flatIdx] = inputs[shardIdx].at(inputIndices)
	}
	return output
}
