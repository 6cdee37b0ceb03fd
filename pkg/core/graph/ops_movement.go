// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/shapes"
)

// Reshape x to the given dimensions, which must have the same total size.
// It returns x itself if the dimensions are unchanged.
func Reshape(x *Node, dimensions ...int) *Node {
	x.AssertValid()
	newShape := shapes.Make(x.DType(), dimensions...)
	if newShape.Size() != x.shape.Size() {
		exceptions.Panicf("Reshape(%s, %v): cannot change the number of elements from %d to %d",
			x.shape, dimensions, x.shape.Size(), newShape.Size())
	}
	if newShape.Equal(x.shape) {
		return x
	}
	return x.graph.newNode(NodeTypeReshape, newShape, x.device, nil, x)
}

// Permute the axes of x: output axis i is the input axis permutation[i].
// It returns x itself for the identity permutation.
func Permute(x *Node, permutation ...int) *Node {
	x.AssertValid()
	rank := x.Rank()
	if len(permutation) != rank {
		exceptions.Panicf("Permute(%s, %v): permutation must have one entry per axis", x.shape, permutation)
	}
	used := make([]bool, rank)
	isIdentity := true
	dims := make([]int, rank)
	for ii, axis := range permutation {
		if axis < 0 || axis >= rank || used[axis] {
			exceptions.Panicf("Permute(%s, %v): invalid permutation", x.shape, permutation)
		}
		used[axis] = true
		isIdentity = isIdentity && axis == ii
		dims[ii] = x.shape.Dimensions[axis]
	}
	if isIdentity {
		return x
	}
	return x.graph.newNode(NodeTypePermute, shapes.Make(x.DType(), dims...), x.device,
		&permuteParams{permutation: slices.Clone(permutation)}, x)
}

// Pad x with zeros: paddings[axis] holds the number of elements added before and after the axis.
// It returns x itself if all paddings are 0.
func Pad(x *Node, paddings [][2]int) *Node {
	x.AssertValid()
	if len(paddings) != x.Rank() {
		exceptions.Panicf("Pad(%s, %v): one padding per axis required", x.shape, paddings)
	}
	dims := slices.Clone(x.shape.Dimensions)
	isNoOp := true
	for axis, pad := range paddings {
		if pad[0] < 0 || pad[1] < 0 {
			exceptions.Panicf("Pad(%s, %v): negative padding for axis %d", x.shape, paddings, axis)
		}
		dims[axis] += pad[0] + pad[1]
		isNoOp = isNoOp && pad == [2]int{}
	}
	if isNoOp {
		return x
	}
	return x.graph.newNode(NodeTypePad, shapes.Make(x.DType(), dims...), x.device,
		&paddingParams{ranges: slices.Clone(paddings)}, x)
}

// Shrink x to the [start, end) range given for each axis in bounds.
// It returns x itself if the bounds cover the whole tensor.
func Shrink(x *Node, bounds [][2]int) *Node {
	x.AssertValid()
	if len(bounds) != x.Rank() {
		exceptions.Panicf("Shrink(%s, %v): one [start, end) range per axis required", x.shape, bounds)
	}
	dims := make([]int, x.Rank())
	isNoOp := true
	for axis, bound := range bounds {
		dim := x.shape.Dimensions[axis]
		if bound[0] < 0 || bound[0] > bound[1] || bound[1] > dim {
			exceptions.Panicf("Shrink(%s, %v): invalid range for axis %d", x.shape, bounds, axis)
		}
		dims[axis] = bound[1] - bound[0]
		isNoOp = isNoOp && bound == [2]int{0, dim}
	}
	if isNoOp {
		return x
	}
	return x.graph.newNode(NodeTypeShrink, shapes.Make(x.DType(), dims...), x.device,
		&paddingParams{ranges: slices.Clone(bounds)}, x)
}

// Flip reverses the order of the elements of x along the given axes.
// Negative axes are counted from the end. It returns x itself if no axes are given.
func Flip(x *Node, axes ...int) *Node {
	x.AssertValid()
	axes = normalizeAxes("Flip", x.shape, axes)
	if len(axes) == 0 {
		return x
	}
	return x.graph.newNode(NodeTypeFlip, x.shape.Clone(), x.device, &flipParams{axes: axes}, x)
}

// Expand broadcasts the axes of x with dimension 1 to the given dimensions.
// The rank must be preserved (use Reshape to add axes first). It returns x itself if the
// dimensions are unchanged.
func Expand(x *Node, dimensions ...int) *Node {
	x.AssertValid()
	if len(dimensions) != x.Rank() {
		exceptions.Panicf("Expand(%s, %v): rank must be preserved", x.shape, dimensions)
	}
	for axis, dim := range dimensions {
		if dim != x.shape.Dimensions[axis] && x.shape.Dimensions[axis] != 1 {
			exceptions.Panicf("Expand(%s, %v): only axes of dimension 1 can be expanded, axis %d has dimension %d",
				x.shape, dimensions, axis, x.shape.Dimensions[axis])
		}
	}
	newShape := shapes.Make(x.DType(), dimensions...)
	if newShape.Equal(x.shape) {
		return x
	}
	return x.graph.newNode(NodeTypeExpand, newShape, x.device, nil, x)
}

// ExpandAs broadcasts x to the dimensions of other.
func ExpandAs(x, other *Node) *Node {
	other.AssertValid()
	return Expand(x, other.shape.Dimensions...)
}
